// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package typeset measures text items: it shapes their text, breaks it
// into lines, and produces glyph runs and a bounding size. Rendering is
// out of scope; the layouts exist so text can be culled and placed.
package typeset

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"honnef.co/go/curve"

	"github.com/planch/planch"
)

// Options configures an Environment.
type Options struct {
	// FontData is a TTF or OTF blob. The embedded Go Regular face is
	// used when nil. Stroke font files from drawings are never loaded;
	// every generic family measures against this one face.
	FontData []byte
}

// An Environment carries the parsed font and pooled shaper state needed
// to measure text. It is an explicit capability: construct one per
// session and thread it into the operations that measure. Environments
// are safe for concurrent use; the HarfBuzz shapers it pools are not,
// which is why they are pooled.
type Environment struct {
	font    *font.Font
	shapers sync.Pool
}

func NewEnvironment(opts Options) (*Environment, error) {
	data := opts.FontData
	if data == nil {
		data = goregular.TTF
	}
	// ParseTTF returns a Face embedding the thread-safe Font; the Face
	// itself is not safe to share, so only the Font is kept.
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("typeset: parsing font: %w", err)
	}
	return &Environment{
		font: face.Font,
		shapers: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}, nil
}

// A Glyph is one positioned glyph in a line, relative to the line
// origin on its baseline.
type Glyph struct {
	ID      uint32
	X, Y    float64
	Advance float64
}

// A Line is one laid-out line of a Layout.
type Line struct {
	Glyphs []Glyph
	// X is the alignment offset of the line origin from the layout's
	// left edge.
	X float64
	// Baseline is the distance of the line's baseline from the top of
	// the layout.
	Baseline float64
	Width    float64
}

// A Layout is the measured form of one text item.
type Layout struct {
	Lines  []Line
	Width  float64
	Height float64
}

// Measure lays out a text item: explicit newlines break lines, greedy
// word wrapping applies at the item's MaxInlineSize, and alignment
// offsets each line inside the layout box. Identical items always
// produce identical layouts.
func (env *Environment) Measure(item planch.FatText) Layout {
	size := item.Style.Size
	wf := item.Style.WidthFactor
	if wf == 0 {
		wf = 1
	}

	// Vertical metrics come from the face, not from any particular
	// line's content, so blank lines take up room too.
	metrics := env.shape([]rune{'M'}, size).LineBounds
	ascent := fixedToFloat(metrics.Ascent)
	lineHeight := ascent - fixedToFloat(metrics.Descent) + fixedToFloat(metrics.Gap)

	var texts []string
	for _, para := range strings.Split(item.Text, "\n") {
		if item.MaxInlineSize > 0 {
			texts = append(texts, env.wrap(para, size, wf, item.MaxInlineSize)...)
		} else {
			texts = append(texts, para)
		}
	}

	var layout Layout
	for i, text := range texts {
		line := Line{Baseline: float64(i)*lineHeight + ascent}
		if text != "" {
			line.Glyphs, line.Width = env.run(text, size, wf)
		}
		layout.Width = max(layout.Width, line.Width)
		layout.Lines = append(layout.Lines, line)
	}
	layout.Height = float64(len(texts)) * lineHeight

	for i := range layout.Lines {
		switch item.Alignment {
		case planch.AlignMiddle:
			layout.Lines[i].X = (layout.Width - layout.Lines[i].Width) / 2
		case planch.AlignRight:
			layout.Lines[i].X = layout.Width - layout.Lines[i].Width
		}
	}
	return layout
}

// Bounds returns the model-space bounding rectangle of a measured item:
// the layout box shifted so the attachment point lands on the insertion
// point, placed by the insertion isometry, then taken into world space.
func (l Layout) Bounds(ap planch.AttachmentPoint, insertion planch.DirectIsometry, world curve.Affine) curve.Rect {
	off := ap.Select(l.Width, l.Height)
	m := curve.Translate(curve.Vec2{X: -off.X, Y: -off.Y}).Mul(insertion.Affine())
	m = world.Mul(m)

	c := m.Coefficients()
	var r curve.Rect
	for i, corner := range [4][2]float64{{0, 0}, {l.Width, 0}, {0, l.Height}, {l.Width, l.Height}} {
		x := c[0]*corner[0] + c[2]*corner[1] + c[4]
		y := c[1]*corner[0] + c[3]*corner[1] + c[5]
		if i == 0 {
			r = curve.Rect{X0: x, Y0: y, X1: x, Y1: y}
		} else {
			r.X0 = min(r.X0, x)
			r.Y0 = min(r.Y0, y)
			r.X1 = max(r.X1, x)
			r.Y1 = max(r.Y1, y)
		}
	}
	return r
}

// run shapes one line of text into a glyph run.
func (env *Environment) run(text string, size, widthFactor float64) ([]Glyph, float64) {
	out := env.shape([]rune(text), size)
	glyphs := make([]Glyph, len(out.Glyphs))
	var x float64
	for i, g := range out.Glyphs {
		adv := fixedToFloat(g.Advance) * widthFactor
		glyphs[i] = Glyph{
			ID:      uint32(g.GlyphID),
			X:       x + fixedToFloat(g.XOffset)*widthFactor,
			Y:       -fixedToFloat(g.YOffset),
			Advance: adv,
		}
		x += adv
	}
	return glyphs, x
}

// wrap greedily packs words into lines no wider than maxWidth. A word
// wider than the limit gets a line of its own rather than being broken.
func (env *Environment) wrap(text string, size, widthFactor, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}
	spaceWidth := env.width(" ", size, widthFactor)

	var lines []string
	var cur strings.Builder
	var curWidth float64
	for _, word := range words {
		w := env.width(word, size, widthFactor)
		if cur.Len() > 0 && curWidth+spaceWidth+w > maxWidth {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
			curWidth += spaceWidth
		}
		cur.WriteString(word)
		curWidth += w
	}
	lines = append(lines, cur.String())
	return lines
}

func (env *Environment) width(text string, size, widthFactor float64) float64 {
	out := env.shape([]rune(text), size)
	var x fixed.Int26_6
	for _, g := range out.Glyphs {
		x += g.Advance
	}
	return fixedToFloat(x) * widthFactor
}

func (env *Environment) shape(runes []rune, size float64) shaping.Output {
	in := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(env.font),
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	shaper := env.shapers.Get().(*shaping.HarfbuzzShaper)
	out := shaper.Shape(in)
	env.shapers.Put(shaper)
	return out
}

// detectScript returns the script of the first non-space rune. Mixed
// script runs would need splitting, which single-face CAD annotations
// do not call for.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
