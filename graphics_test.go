// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package planch

import (
	"image/color"
	"math"
	"testing"

	"honnef.co/go/curve"
)

func affineNear(t *testing.T, got, want curve.Affine, context string) {
	t.Helper()
	g := got.Coefficients()
	w := want.Coefficients()
	for i := range g {
		if math.Abs(g[i]-w[i]) > 1e-12 {
			t.Fatalf("%s: affine coefficient %d = %v, want %v (got %v, want %v)",
				context, i, g[i], w[i], g, w)
		}
	}
}

func TestRegisterTransformOrdering(t *testing.T) {
	bag := NewGraphicsBag()
	parent := Root
	for i := 0; i < 10; i++ {
		h := bag.RegisterTransform(parent, curve.Translate(curve.Vec2{X: 1}))
		if h <= parent {
			t.Fatalf("child handle %d not greater than parent %d", h, parent)
		}
		parent = h
	}
}

func TestWorldIsParentWorldTimesLocal(t *testing.T) {
	bag := NewGraphicsBag()

	// A chain seven levels deep with mixed transforms, plus a sibling at
	// every level.
	locals := []curve.Affine{
		curve.Translate(curve.Vec2{X: 3, Y: -2}),
		curve.Rotate(0.25),
		curve.Scale(2, 2),
		curve.Translate(curve.Vec2{Y: 11}),
		curve.Rotate(-1.5),
		curve.Scale(0.5, 4),
		curve.Translate(curve.Vec2{X: -7, Y: 7}),
	}
	parent := Root
	var handles []TransformHandle
	for _, l := range locals {
		bag.RegisterTransform(parent, curve.Rotate(1)) // sibling
		parent = bag.RegisterTransform(parent, l)
		handles = append(handles, parent)
	}

	check := func() {
		t.Helper()
		for _, h := range handles {
			want := bag.World(bag.Parent(h)).Mul(bag.Local(h))
			affineNear(t, bag.World(h), want, "world invariant")
		}
	}
	check()

	bag.UpdateTransform(handles[2], curve.Scale(10, 10))
	check()

	bag.UpdateTransform(Root, curve.Translate(curve.Vec2{X: 100}))
	check()
}

func TestBatchUpdateMatchesSequential(t *testing.T) {
	build := func() (*GraphicsBag, []TransformHandle) {
		bag := NewGraphicsBag()
		var handles []TransformHandle
		parent := Root
		for i := 0; i < 6; i++ {
			parent = bag.RegisterTransform(parent, curve.Translate(curve.Vec2{X: float64(i)}))
			handles = append(handles, parent)
		}
		return bag, handles
	}

	updates := []TransformUpdate{
		{Handle: Root, Local: curve.Scale(3, 3)},
		{Handle: 2, Local: curve.Rotate(0.7)},
		{Handle: 5, Local: curve.Translate(curve.Vec2{Y: -4})},
	}

	seq, handles := build()
	for _, u := range updates {
		seq.UpdateTransform(u.Handle, u.Local)
	}

	batch, _ := build()
	batch.UpdateTransforms(updates)

	for _, h := range handles {
		affineNear(t, batch.World(h), seq.World(h), "batch vs sequential")
	}
	affineNear(t, batch.World(Root), seq.World(Root), "batch vs sequential root")
}

func TestPaintUpdateSharedAcrossItems(t *testing.T) {
	bag := NewGraphicsBag()
	shared := bag.RegisterPaint(FatPaint{Stroke: SomeColor(color.NRGBA{A: 255})})
	other := bag.RegisterPaint(FatPaint{Stroke: SomeColor(color.NRGBA{R: 255, A: 255})})

	var line curve.BezPath
	line.MoveTo(curve.Point{})
	line.LineTo(curve.Point{X: 1})

	a := bag.Push(FatShape{Paint: shared, Path: line})
	b := bag.Push(FatShape{Paint: shared, Path: line})
	c := bag.Push(FatShape{Paint: other, Path: line})

	bag.UpdatePaint(shared, FatPaint{StrokeWidth: 2.5, Stroke: SomeColor(color.NRGBA{A: 255})})

	for _, h := range []ItemHandle{a, b} {
		item, ok := bag.Item(h)
		if !ok {
			t.Fatalf("item %d missing", h)
		}
		if w := bag.Paint(item.(FatShape).Paint).StrokeWidth; w != 2.5 {
			t.Errorf("item %d stroke width = %v, want 2.5", h, w)
		}
	}
	item, _ := bag.Item(c)
	if w := bag.Paint(item.(FatShape).Paint).StrokeWidth; w != 0 {
		t.Errorf("unrelated paint was modified, stroke width = %v", w)
	}
}

func TestForeignHandlePanics(t *testing.T) {
	bag := NewGraphicsBag()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for handle not owned by bag")
		}
	}()
	bag.World(TransformHandle(42))
}

func TestRenderLayerFilter(t *testing.T) {
	bag := NewGraphicsBag()
	var rl RenderLayer
	var line curve.BezPath
	line.MoveTo(curve.Point{})
	line.LineTo(curve.Point{X: 1})
	paint := bag.RegisterPaint(FatPaint{})
	for i := 0; i < 5; i++ {
		rl.PushWithBag(bag, FatShape{Paint: paint, Path: line})
	}

	kept := rl.Filter(func(h ItemHandle) bool { return h%2 == 0 })
	if len(kept.Indices) != 3 {
		t.Fatalf("filtered layer has %d handles, want 3", len(kept.Indices))
	}
	// The source layer is a view; filtering must not disturb it.
	if len(rl.Indices) != 5 {
		t.Fatalf("source layer mutated, has %d handles", len(rl.Indices))
	}
}

func TestAttachmentPointSelect(t *testing.T) {
	const w, h = 10.0, 4.0
	cases := []struct {
		ap   AttachmentPoint
		want curve.Vec2
	}{
		{TopLeft, curve.Vec2{}},
		{TopCenter, curve.Vec2{X: 5}},
		{TopRight, curve.Vec2{X: 10}},
		{MiddleLeft, curve.Vec2{Y: 2}},
		{MiddleCenter, curve.Vec2{X: 5, Y: 2}},
		{MiddleRight, curve.Vec2{X: 10, Y: 2}},
		{BottomLeft, curve.Vec2{Y: 4}},
		{BottomCenter, curve.Vec2{X: 5, Y: 4}},
		{BottomRight, curve.Vec2{X: 10, Y: 4}},
	}
	for _, c := range cases {
		if got := c.ap.Select(w, h); got != c.want {
			t.Errorf("attachment %d: Select = %v, want %v", c.ap, got, c.want)
		}
	}
}

func TestDirectIsometryAffine(t *testing.T) {
	di := DirectIsometry{Angle: math.Pi / 2, Displacement: curve.Vec2{X: 5, Y: 1}}
	c := di.Affine().Coefficients()
	p := curve.Point{X: 1, Y: 0}
	got := curve.Point{X: c[0]*p.X + c[2]*p.Y + c[4], Y: c[1]*p.X + c[3]*p.Y + c[5]}
	want := curve.Point{X: 5, Y: 2}
	if math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 {
		t.Fatalf("transformed point = %v, want %v", got, want)
	}
}
