// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package planch

import "honnef.co/go/curve"

// AttachmentPoint is the reference point where a laid-out text block is
// attached to its insertion point.
type AttachmentPoint int32

const (
	// TopLeft is the top left corner.
	TopLeft AttachmentPoint = iota + 1
	// TopCenter is the center of the top edge.
	TopCenter
	// TopRight is the top right corner.
	TopRight
	// MiddleLeft is the middle of the left edge.
	MiddleLeft
	// MiddleCenter is the center of both axes.
	MiddleCenter
	// MiddleRight is the middle of the right edge.
	MiddleRight
	// BottomLeft is the bottom left corner.
	BottomLeft
	// BottomCenter is the center of the bottom edge.
	BottomCenter
	// BottomRight is the bottom right corner.
	BottomRight
)

// Select returns the displacement of the attachment point from the top left
// origin of a laid-out box with the given size.
func (ap AttachmentPoint) Select(width, height float64) curve.Vec2 {
	switch ap {
	case TopCenter:
		return curve.Vec2{X: 0.5 * width}
	case TopRight:
		return curve.Vec2{X: width}
	case MiddleLeft:
		return curve.Vec2{Y: 0.5 * height}
	case MiddleCenter:
		return curve.Vec2{X: 0.5 * width, Y: 0.5 * height}
	case MiddleRight:
		return curve.Vec2{X: width, Y: 0.5 * height}
	case BottomLeft:
		return curve.Vec2{Y: height}
	case BottomCenter:
		return curve.Vec2{X: 0.5 * width, Y: height}
	case BottomRight:
		return curve.Vec2{X: width, Y: height}
	default: // TopLeft and out-of-range values.
		return curve.Vec2{}
	}
}

// Alignment controls how lines are distributed across the inline axis.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignMiddle
	AlignRight
)

// GenericFamily selects a generic font family for text items. Concrete face
// selection is up to the typesetting environment.
type GenericFamily int

const (
	SansSerif GenericFamily = iota
	Serif
	Monospace
	Cursive
)

// TextStyle carries the resolved style attributes of a text item.
type TextStyle struct {
	// Size is the font size in model units.
	Size float64
	// WidthFactor stretches glyph advances; 1 is natural width.
	WidthFactor float64
	// ObliqueAngle is a synthetic slant in degrees, 0 for upright.
	ObliqueAngle float64
	Family       GenericFamily
	// Weight in CSS terms; 0 means regular.
	Weight int
	Italic bool
}

// FatText is a text item.
type FatText struct {
	Transform TransformHandle
	Paint     PaintHandle
	Text      string
	Style     TextStyle
	Alignment Alignment
	// MaxInlineSize is the inline size at which lines break; 0 disables
	// wrapping.
	MaxInlineSize float64
	// Insertion places the laid-out text in model space.
	Insertion DirectIsometry
	// Attachment is the corner or edge of the text box that coincides with
	// the insertion point.
	Attachment AttachmentPoint
}
