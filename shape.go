// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package planch

import (
	"image/color"

	"honnef.co/go/curve"
)

// OptionalColor is a color that may be absent. Shapes with no fill, or no
// stroke, carry an unset color for that role.
type OptionalColor struct {
	Color color.NRGBA
	Set   bool
}

// SomeColor returns a set OptionalColor.
func SomeColor(c color.NRGBA) OptionalColor {
	return OptionalColor{Color: c, Set: true}
}

// FatPaint is the shared paint referenced by items through a PaintHandle.
//
// StrokeWidth is in model units post view adaptation. Paints interned during
// a load carry a zero width until the first restroke adapts them to the
// device; see dxfscene.RestrokePaint.
type FatPaint struct {
	StrokeWidth float64
	Stroke      OptionalColor
	Fill        OptionalColor
}

// FatShape is a path with a shared transform and paint.
type FatShape struct {
	Transform TransformHandle
	Paint     PaintHandle
	Path      curve.BezPath
}

// BoundingBox returns the bounding box of the shape's path in its local
// coordinate frame. The second return value is false when the path has no
// segments.
func (s FatShape) BoundingBox() (curve.Rect, bool) {
	if !s.Path.HasSegments() {
		return curve.Rect{}, false
	}
	return s.Path.BoundingBox(), true
}
