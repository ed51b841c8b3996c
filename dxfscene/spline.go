// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import (
	"math"
	"slices"

	"honnef.co/go/curve"

	"github.com/planch/planch"
	"github.com/planch/planch/dxf"
)

// splinePath converts a B-spline of degree at most 3 into a path, one
// Bezier segment per interior knot span. Degree 1 spans are lines;
// degree 2 spans reconstruct the quadratic control point by
// intersecting the endpoint tangents; degree 3 spans use the Hermite
// construction from endpoint positions and tangents.
func splinePath(s dxf.Spline, handle uint64) (curve.BezPath, bool) {
	degree := s.Degree
	if degree < 1 || degree > 3 {
		planch.Logger().Debug("skipping spline of unsupported degree", "handle", handle, "degree", degree)
		return nil, false
	}
	if len(s.Controls) < degree+1 {
		planch.Logger().Debug("skipping spline with too few control points", "handle", handle)
		return nil, false
	}
	if len(s.Knots) < len(s.Controls)+degree+1 {
		planch.Logger().Debug("skipping spline with malformed knot vector", "handle", handle)
		return nil, false
	}

	controls := make([]curve.Point, len(s.Controls))
	for i, p := range s.Controls {
		controls[i] = pointFrom(p)
	}
	knots := s.Knots

	// Unique knot values within the valid parameter range bound the
	// curve's polynomial spans.
	uniq := append([]float64(nil), knots[degree:len(knots)-degree]...)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)
	if len(uniq) == 0 {
		return nil, false
	}

	var bp curve.BezPath
	last := evalSpline(degree, controls, knots, uniq[0])
	bp.MoveTo(last)

	var dDegree int
	var dControls []curve.Point
	var dKnots []float64
	if degree >= 2 {
		dDegree, dControls, dKnots = derivativeControlPoints(degree, controls, knots)
	}

	for i := 0; i+1 < len(uniq); i++ {
		u0, u1 := uniq[i], uniq[i+1]
		end := evalSpline(degree, controls, knots, u1)
		switch degree {
		case 1:
			bp.LineTo(end)
		case 2:
			d0 := evalSpline(dDegree, dControls, dKnots, u0)
			d1 := evalSpline(dDegree, dControls, dKnots, u1)
			if c, ok := lineIntersection(last, d0, end, d1); ok {
				bp.QuadTo(c, end)
			} else {
				// Parallel tangents.
				bp.LineTo(end)
			}
		case 3:
			d0 := evalSpline(dDegree, dControls, dKnots, u0)
			d1 := evalSpline(dDegree, dControls, dKnots, u1)
			du := u1 - u0
			c1 := curve.Point{X: last.X + du/3*d0.X, Y: last.Y + du/3*d0.Y}
			c2 := curve.Point{X: end.X - du/3*d1.X, Y: end.Y - du/3*d1.Y}
			bp.CubicTo(c1, c2, end)
		}
		last = end
	}

	if s.Closed {
		bp.ClosePath()
	}
	return bp, true
}

// evalSpline evaluates a B-spline at u with de Boor's algorithm.
// Parameters outside the valid range clamp to the end control points.
func evalSpline(degree int, controls []curve.Point, knots []float64, u float64) curve.Point {
	n := len(controls) - 1
	k := len(knots) - 1
	for i, knot := range knots {
		if knot > u {
			k = i
			break
		}
	}
	if k > 0 {
		k--
	}
	if k < degree || k > n {
		if u < knots[degree] {
			return controls[0]
		}
		return controls[n]
	}
	d := append([]curve.Point(nil), controls[k-degree:k+1]...)
	for r := 1; r <= degree; r++ {
		for i := degree; i >= r; i-- {
			alpha := (u - knots[k-degree+i]) /
				(knots[k-degree+i+degree-r+1] - knots[k-degree+i])
			d[i] = curve.Point{
				X: (1-alpha)*d[i-1].X + alpha*d[i].X,
				Y: (1-alpha)*d[i-1].Y + alpha*d[i].Y,
			}
		}
	}
	return d[degree]
}

// derivativeControlPoints returns the degree, control points, and knot
// vector of a B-spline's derivative curve.
func derivativeControlPoints(degree int, controls []curve.Point, knots []float64) (int, []curve.Point, []float64) {
	n := len(controls) - 1
	if degree == 0 || n < 1 {
		return 0, nil, knots
	}
	dc := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		factor := float64(degree) / (knots[i+degree+1] - knots[i+1])
		dc[i] = curve.Point{
			X: factor * (controls[i+1].X - controls[i].X),
			Y: factor * (controls[i+1].Y - controls[i].Y),
		}
	}
	return degree - 1, dc, knots[1 : len(knots)-1]
}

// lineIntersection intersects the infinite lines p0 + t*d0 and
// p1 + t*d1, reporting false when they are effectively parallel.
func lineIntersection(p0, d0, p1, d1 curve.Point) (curve.Point, bool) {
	det := d0.X*-d1.Y - -d1.X*d0.Y
	if math.Abs(det) < 1e-10 {
		return curve.Point{}, false
	}
	t := ((p1.X-p0.X)*-d1.Y - (p1.Y-p0.Y)*-d1.X) / det
	return curve.Point{X: p0.X + t*d0.X, Y: p0.Y + t*d0.Y}, true
}
