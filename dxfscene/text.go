// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import (
	"math"
	"strings"

	"github.com/planch/planch"
	"github.com/planch/planch/dxf"
)

// textStyles maps the STYLE table onto text style attributes. The font
// file names cover the stroke fonts commonly seen in the wild; anything
// unrecognized sets as sans serif.
func textStyles(doc *dxf.Drawing) map[string]planch.TextStyle {
	out := make(map[string]planch.TextStyle, len(doc.Styles))
	for name, s := range doc.Styles {
		// A zero height here means each entity picks its own.
		ts := planch.TextStyle{
			Size:         s.Height,
			WidthFactor:  s.WidthFactor,
			ObliqueAngle: s.ObliqueAngle,
			Family:       planch.SansSerif,
		}
		switch strings.TrimSuffix(strings.ToLower(s.Font), ".shx") {
		case "monotxt":
			// Monospace version of txt.
			ts.Family = planch.Monospace
		case "italic":
			ts.Family = planch.Serif
			ts.Italic = true
		case "romans":
			// Roman type lined once.
			ts.Family = planch.Serif
		case "romanc":
			// Condensed roman type.
			ts.Family = planch.Serif
			ts.WidthFactor *= 0.75
		case "romand":
			// Roman type lined twice, bold in spirit.
			ts.Family = planch.Serif
			ts.Weight = 700
		case "romant":
			// Roman type lined thrice, bolder still.
			ts.Family = planch.Serif
			ts.Weight = 800
		case "script":
			ts.Family = planch.Cursive
		}
		out[name] = ts
	}
	return out
}

// mtextReplacements handles special character codes and the subset of
// inline formatting codes that have a plain-text rendering. Applied in
// order, like repeated replacement, so %%% resolves after the
// two-percent codes.
var mtextReplacements = [][2]string{
	{"%%c", "∅"}, {"%%C", "∅"},
	{"%%d", "°"}, {"%%D", "°"},
	{"%%p", "±"}, {"%%P", "±"},
	{"%%%", "%"},
	{"\\L", ""}, {"\\l", ""},
	{"\\O", ""}, {"\\o", ""},
	{"\\S", ""}, {"\\s", ""},
	{"\\P", "\n"},
	{"\\A1;", ""}, {"\\A0;", ""},
}

var textReplacements = [][2]string{
	{"%%c", "∅"}, {"%%C", "∅"},
	{"%%d", "°"}, {"%%D", "°"},
	{"%%p", "±"}, {"%%P", "±"},
	{"%%%", "%"},
	{"%%u", ""}, {"%%o", ""},
}

func substitute(s string, reps [][2]string) string {
	for _, r := range reps {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}

// mtextItem converts an MTEXT entity into a text item.
func mtextItem(mt dxf.MText, styles map[string]planch.TextStyle, paint planch.PaintHandle) planch.FatText {
	attachment := planch.AttachmentPoint(mt.Attachment)
	if attachment < planch.TopLeft || attachment > planch.BottomRight {
		attachment = planch.TopLeft
	}

	// The attachment point decides the alignment as well.
	var alignment planch.Alignment
	switch attachment {
	case planch.TopCenter, planch.MiddleCenter, planch.BottomCenter:
		alignment = planch.AlignMiddle
	case planch.TopRight, planch.MiddleRight, planch.BottomRight:
		alignment = planch.AlignRight
	default:
		alignment = planch.AlignLeft
	}

	var maxInline float64
	if alignment != planch.AlignMiddle {
		maxInline = mt.Width
	}

	// Rotation and the x axis direction are exclusive ways to state the
	// same thing.
	var xAngle float64
	if mt.HasXAxis {
		xAngle = math.Atan2(-mt.XAxis.Y, mt.XAxis.X)
	}

	style, ok := styles[mt.Style]
	if !ok {
		style = planch.TextStyle{Size: mt.Height, WidthFactor: 1}
	} else if style.Size == 0 {
		style.Size = mt.Height
	}

	location := pointFrom(mt.Position)
	return planch.FatText{
		Paint:         paint,
		Text:          substitute(mt.Value, mtextReplacements),
		Style:         style,
		Alignment:     alignment,
		MaxInlineSize: maxInline,
		Insertion: planch.DirectIsometry{
			Angle:        -mt.Rotation*math.Pi/180 + xAngle,
			Displacement: vec2(location.X, location.Y),
		},
		Attachment: attachment,
	}
}

// textItem converts a single line TEXT entity into a text item.
func textItem(tx dxf.Text, styles map[string]planch.TextStyle, paint planch.PaintHandle) planch.FatText {
	style, ok := styles[tx.Style]
	if !ok {
		style = planch.TextStyle{Size: tx.Height, WidthFactor: 1}
	} else if style.Size == 0 {
		style.Size = tx.Height
	}
	if tx.ObliqueAngle != 0 {
		style.ObliqueAngle = tx.ObliqueAngle
	}

	location := pointFrom(tx.Position)
	return planch.FatText{
		Paint: paint,
		Text:  substitute(tx.Value, textReplacements),
		Style: style,
		Insertion: planch.DirectIsometry{
			Angle:        -tx.Rotation * math.Pi / 180,
			Displacement: vec2(location.X, location.Y),
		},
		Attachment: planch.TopLeft,
	}
}
