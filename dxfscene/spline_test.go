// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import (
	"testing"

	"honnef.co/go/curve"

	"github.com/planch/planch/dxf"
)

func TestSplineDegree1IsPolyline(t *testing.T) {
	bp, ok := PathFromEntity(ent(dxf.Spline{
		Degree:   1,
		Knots:    []float64{0, 0, 1, 2, 2},
		Controls: []dxf.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}},
	}))
	if !ok {
		t.Fatal("spline not converted")
	}
	segs := segments(bp)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	for _, seg := range segs {
		if seg.Kind != curve.LineKind {
			t.Fatal("degree 1 span did not reduce to a line")
		}
	}
	pointNear(t, segs[0].Eval(1), curve.Point{X: 1, Y: -1}, 1e-9, "interior knot")
	pointNear(t, segs[1].Eval(1), curve.Point{X: 2, Y: 0}, 1e-9, "last knot")
}

func TestSplineCubicReproducesEndpoints(t *testing.T) {
	controls := []dxf.Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 0}}
	bp, ok := PathFromEntity(ent(dxf.Spline{
		Degree:   3,
		Knots:    []float64{0, 0, 0, 0, 1, 1, 1, 1},
		Controls: controls,
	}))
	if !ok {
		t.Fatal("spline not converted")
	}
	start, end := endpoints(t, bp)
	pointNear(t, start, curve.Point{X: 0, Y: 0}, 1e-9, "start")
	pointNear(t, end, curve.Point{X: 4, Y: 0}, 1e-9, "end")

	// A clamped single-span cubic is already a Bezier; the Hermite
	// reconstruction must reproduce it exactly.
	segs := segments(bp)
	if len(segs) != 1 || segs[0].Kind != curve.CubicKind {
		t.Fatalf("expected a single cubic segment")
	}
	pointNear(t, segs[0].Eval(0.5), curve.Point{X: 2, Y: -1.5}, 1e-9, "midpoint")
}

func TestSplineQuadraticTangentIntersection(t *testing.T) {
	// A clamped single-span quadratic; the tangent intersection is the
	// middle control point.
	bp, ok := PathFromEntity(ent(dxf.Spline{
		Degree:   2,
		Knots:    []float64{0, 0, 0, 1, 1, 1},
		Controls: []dxf.Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 0}},
	}))
	if !ok {
		t.Fatal("spline not converted")
	}
	segs := segments(bp)
	if len(segs) != 1 || segs[0].Kind != curve.QuadKind {
		t.Fatal("expected a single quadratic segment")
	}
	// Quadratic midpoint = (p0 + 2c + p2)/4 with c = (1,-2).
	pointNear(t, segs[0].Eval(0.5), curve.Point{X: 1, Y: -1}, 1e-9, "midpoint")
}

func TestSplineParallelTangentsFallBack(t *testing.T) {
	bp, ok := PathFromEntity(ent(dxf.Spline{
		Degree:   2,
		Knots:    []float64{0, 0, 0, 1, 1, 1},
		Controls: []dxf.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
	}))
	if !ok {
		t.Fatal("spline not converted")
	}
	segs := segments(bp)
	if len(segs) != 1 || segs[0].Kind != curve.LineKind {
		t.Fatal("collinear quadratic did not fall back to a line")
	}
}

func TestSplineRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		s    dxf.Spline
	}{
		{"degree 4", dxf.Spline{Degree: 4, Knots: make([]float64, 10), Controls: make([]dxf.Point, 5)}},
		{"too few controls", dxf.Spline{Degree: 3, Knots: make([]float64, 8), Controls: make([]dxf.Point, 3)}},
		{"short knot vector", dxf.Spline{Degree: 3, Knots: make([]float64, 5), Controls: make([]dxf.Point, 4)}},
	}
	for _, c := range cases {
		if _, ok := PathFromEntity(ent(c.s)); ok {
			t.Errorf("%s: expected the spline to be skipped", c.name)
		}
	}
}
