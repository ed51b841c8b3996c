// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package view holds the per-tick orchestration of an interactive
// drawing session: a viewport mapping model space to device pixels,
// reprojection (transform update, stroke re-adaptation, culling), and
// device-space picking. It owns no window or renderer; the caller feeds
// it device events and hands the filtered layer to whatever draws.
package view

import (
	"image/color"
	"math"

	"honnef.co/go/curve"

	"github.com/planch/planch"
	"github.com/planch/planch/dxfscene"
	"github.com/planch/planch/spatial"
)

// pickDist is the pick radius in logical pixels, half the diagonal of a
// 2x2 pixel square.
const pickDist = 1.414

// A Viewport maps drawing model space onto a device surface.
type Viewport struct {
	// Transform takes model coordinates to device pixels.
	Transform curve.Affine
	// Scale is the cumulative uniform scale of Transform.
	Scale float64
	// ScaleFactor is the device scale factor, device pixels per logical
	// pixel.
	ScaleFactor float64
	// Width and Height are the surface size in device pixels.
	Width, Height float64
}

func NewViewport(width, height, scaleFactor float64) Viewport {
	return Viewport{
		Transform:   curve.Identity,
		Scale:       1,
		ScaleFactor: scaleFactor,
		Width:       width,
		Height:      height,
	}
}

// FitDrawing sets the transform so bounds fills the surface, anchored at
// the top left. Degenerate bounds leave the scale at 1.
func (v *Viewport) FitDrawing(bounds curve.Rect) {
	w, h := bounds.X1-bounds.X0, bounds.Y1-bounds.Y0
	scale := min(v.Width/w, v.Height/h)
	if !(scale > 0) || math.IsInf(scale, 1) {
		scale = 1
	}
	v.Transform = curve.Translate(curve.Vec2{X: -bounds.X0, Y: -bounds.Y0}).ThenScale(scale, scale)
	v.Scale = scale
}

// PanBy shifts the view by a device-space delta.
func (v *Viewport) PanBy(delta curve.Vec2) {
	v.Transform = v.Transform.ThenTranslate(delta)
}

// ZoomAbout scales the view by factor around a device-space point, which
// stays fixed on screen.
func (v *Viewport) ZoomAbout(pt curve.Point, factor float64) {
	v.Transform = v.Transform.
		ThenTranslate(curve.Vec2{X: -pt.X, Y: -pt.Y}).
		ThenScale(factor, factor).
		ThenTranslate(curve.Vec2{X: pt.X, Y: pt.Y})
	v.Scale *= factor
}

// ToModel maps a device-space point back into model space.
func (v *Viewport) ToModel(pt curve.Point) curve.Point {
	c := v.Transform.Invert().Coefficients()
	return curve.Point{
		X: c[0]*pt.X + c[2]*pt.Y + c[4],
		Y: c[1]*pt.X + c[3]*pt.Y + c[5],
	}
}

// VisibleRect returns the model-space rectangle the surface shows.
func (v *Viewport) VisibleRect() curve.Rect {
	tl := v.ToModel(curve.Point{})
	br := v.ToModel(curve.Point{X: v.Width, Y: v.Height})
	return curve.Rect{
		X0: min(tl.X, br.X),
		Y0: min(tl.Y, br.Y),
		X1: max(tl.X, br.X),
		Y1: max(tl.Y, br.Y),
	}
}

// Reproject brings a drawing up to date with the viewport and returns
// the layer of items worth submitting to a renderer: the root transform
// is updated, the default paint's stroke is kept at one unit post-scale,
// every view-dependent paint is re-adapted to the device pixel pitch,
// and the drawing's layer is culled against the visible rectangle.
//
// This is the once-per-interaction-tick operation; pan, zoom, and resize
// all funnel into it.
func (v *Viewport) Reproject(d *dxfscene.Drawing, shapes *spatial.ShapeIndex, texts *spatial.TextIndex) planch.RenderLayer {
	d.Bag.UpdateTransform(planch.Root, v.Transform)

	// Stroke widths apply before the view transform, so the default
	// one-pixel stroke divides out the scale.
	d.Bag.UpdatePaint(0, planch.FatPaint{
		StrokeWidth: 1 / v.Scale,
		Stroke:      planch.SomeColor(color.NRGBA{A: 0xFF}),
	})

	pitch := dxfscene.Inch / dxfscene.Micrometers(math.Trunc(96*v.ScaleFactor))
	for _, r := range d.Restrokes {
		r.Adapt(d.Bag, pitch, v.Scale, 1, math.Inf(1))
	}

	visible := v.VisibleRect()
	shapeVis := shapes.Cull(visible)
	textVis := texts.Cull(visible)

	return d.Layer.Filter(func(ih planch.ItemHandle) bool {
		item, ok := d.Bag.Item(ih)
		if !ok {
			return false
		}
		switch item.(type) {
		case planch.FatShape:
			_, ok := shapeVis[ih]
			return ok
		case planch.FatText:
			_, ok := textVis[ih]
			return ok
		}
		return false
	})
}

// PickAt picks the entity nearest to a device-space point, within a
// small device-pixel radius mapped into model units.
func (v *Viewport) PickAt(shapes *spatial.ShapeIndex, devicePt curve.Point) (dxfscene.EntityHandle, bool) {
	radius := pickDist * v.ScaleFactor / v.Scale
	return shapes.Pick(v.ToModel(devicePt), radius)
}

// Highlight builds an ephemeral one-entity overlay: a fresh bag whose
// root carries the view transform and a layer holding copies of the
// picked entity's shapes with a highlight paint. Rendering it after the
// drawing's own layer draws the pick on top without touching the
// drawing's paints.
func (v *Viewport) Highlight(d *dxfscene.Drawing, pick dxfscene.EntityHandle) (*planch.GraphicsBag, planch.RenderLayer) {
	bag := planch.NewGraphicsBag()
	bag.UpdateTransform(planch.Root, v.Transform)

	paint := bag.RegisterPaint(planch.FatPaint{
		StrokeWidth: pickDist / v.Scale,
		// Goldenrod, readable on both light and dark backgrounds.
		Stroke: planch.SomeColor(color.NRGBA{R: 0xDA, G: 0xA5, B: 0x20, A: 0xFF}),
	})

	var layer planch.RenderLayer
	for _, ih := range d.Layer.Indices {
		if d.ItemEntity[ih] != pick {
			continue
		}
		item, ok := d.Bag.Item(ih)
		if !ok {
			continue
		}
		shape, ok := item.(planch.FatShape)
		if !ok {
			continue
		}
		layer.PushWithBag(bag, planch.FatShape{Paint: paint, Path: shape.Path})
	}
	return bag, layer
}
