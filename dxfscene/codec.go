// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package dxfscene converts parsed DXF documents into planch scenes:
// entity geometry into paths, color and lineweight attributes into
// shared paints, and block references into expanded, transformed
// shapes.
package dxfscene

import (
	"math"

	"honnef.co/go/curve"

	"github.com/planch/planch"
	"github.com/planch/planch/dxf"
)

// accuracy is the tolerance for approximating arcs with cubics.
const accuracy = 1e-6

// pointFrom converts a drawing point into model space. DXF is y-up,
// model space is y-down.
func pointFrom(p dxf.Point) curve.Point {
	return curve.Point{X: p.X, Y: -p.Y}
}

// PathFromEntity converts one entity's geometry into a path. It
// returns false for entity types without a planar path form and for
// malformed geometry; the caller is expected to carry on.
func PathFromEntity(e *dxf.Entity) (curve.BezPath, bool) {
	if e.ExtrusionZ != 1 {
		planch.Logger().Debug("skipping entity with unsupported extrusion",
			"handle", e.Handle, "z", e.ExtrusionZ)
		return nil, false
	}
	switch d := e.Data.(type) {
	case dxf.Line:
		var bp curve.BezPath
		bp.MoveTo(pointFrom(d.Start))
		bp.LineTo(pointFrom(d.End))
		return bp, true
	case dxf.Circle:
		c := curve.Circle{Center: pointFrom(d.Center), Radius: d.Radius}
		return pathFromShape(c), true
	case dxf.Arc:
		// Angles are counterclockwise in the y-up source frame, so both
		// the start angle and the sweep flip sign.
		a := curve.Arc{
			Center:     pointFrom(d.Center),
			Radii:      curve.Vec2{X: d.Radius, Y: d.Radius},
			StartAngle: -d.Start * math.Pi / 180,
			SweepAngle: -remEuclid(d.End-d.Start, 360) * math.Pi / 180,
		}
		return pathFromShape(a), true
	case dxf.LwPolyline:
		return polylinePath(d.Vertices, d.Closed)
	case dxf.Polyline:
		if d.Mesh {
			planch.Logger().Debug("skipping mesh polyline", "handle", e.Handle)
			return nil, false
		}
		return polylinePath(d.Vertices, d.Closed)
	case dxf.Spline:
		return splinePath(d, e.Handle)
	default:
		planch.Logger().Debug("unhandled entity type", "handle", e.Handle, "type", typeName(e.Data))
		return nil, false
	}
}

func typeName(d dxf.EntityData) string {
	if u, ok := d.(dxf.Unknown); ok {
		return u.Type
	}
	switch d.(type) {
	case dxf.Insert:
		return "INSERT"
	case dxf.Text:
		return "TEXT"
	case dxf.MText:
		return "MTEXT"
	}
	return "?"
}

func remEuclid(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

func pathFromShape(s curve.Shape) curve.BezPath {
	var bp curve.BezPath
	for el := range s.PathElements(accuracy) {
		bp = append(bp, el)
	}
	return bp
}

func polylinePath(vs []dxf.PolylineVertex, closed bool) (curve.BezPath, bool) {
	if len(vs) < 2 {
		return nil, false
	}
	var bp curve.BezPath
	bp.MoveTo(pointFrom(vs[0].Point))
	for i := 0; i+1 < len(vs); i++ {
		// Bulge sign flips with the y axis.
		addPolySegment(&bp, pointFrom(vs[i].Point), pointFrom(vs[i+1].Point), -vs[i].Bulge)
	}
	if closed {
		bp.ClosePath()
	}
	return bp, true
}

// addPolySegment appends one polyline segment, as an arc when the bulge
// is nonzero. The bulge is the tangent of a quarter of the included
// angle; chord length and bulge give the radius and center.
func addPolySegment(bp *curve.BezPath, start, end curve.Point, bulge float64) {
	if bulge == 0 {
		bp.LineTo(end)
		return
	}
	theta := 4 * math.Atan(bulge)
	if math.Abs(theta) < 1e-6 {
		bp.LineTo(end)
		return
	}
	vx, vy := end.X-start.X, end.Y-start.Y
	d := math.Hypot(vx, vy)
	if d < 1e-10 {
		// Too close to derive a radius; degrade to a line.
		bp.LineTo(end)
		return
	}
	r := d / (2 * math.Abs(math.Sin(theta/2)))

	s := 1.0
	if bulge < 0 {
		s = -1
	}
	h := r * math.Cos(theta/2)
	cx := (start.X+end.X)/2 + h/d*(-s*vy)
	cy := (start.Y+end.Y)/2 + h/d*(s*vx)

	arc := curve.Arc{
		Center:     curve.Point{X: cx, Y: cy},
		Radii:      curve.Vec2{X: r, Y: r},
		StartAngle: math.Atan2(start.Y-cy, start.X-cx),
		SweepAngle: theta,
	}
	appendArc(bp, arc)
}

// appendArc appends an arc's curves to an open path, dropping the
// arc's own leading MoveTo so the path stays connected.
func appendArc(bp *curve.BezPath, a curve.Arc) {
	first := true
	for el := range a.PathElements(accuracy) {
		if first {
			first = false
			continue
		}
		*bp = append(*bp, el)
	}
}
