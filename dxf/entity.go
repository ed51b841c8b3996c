// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxf

// A Point is a coordinate in drawing units. DXF stores Z for most
// entities but the model is planar; Z is dropped during parsing.
type Point struct {
	X, Y float64
}

// Common color and lineweight sentinels used by group codes 62 and 370.
const (
	ColorByBlock = 0
	ColorByLayer = 256

	LineWeightByLayer int16 = -1
	LineWeightByBlock int16 = -2
	LineWeightDefault int16 = -3
)

// An Entity is one graphical record from the ENTITIES section or a
// block definition. The fields shared by all entity types live here;
// Data holds the per-type geometry.
type Entity struct {
	Handle uint64
	Layer  string

	// ColorIndex is group 62: 0 means by-block, 256 by-layer, 1
	// through 255 an AutoCAD Color Index.
	ColorIndex int
	// TrueColor is group 420 as 0x00RRGGBB, taking precedence over
	// ColorIndex when set.
	TrueColor    uint32
	HasTrueColor bool
	// Transparency is group 440; the low byte is coverage, 255 fully
	// opaque.
	Transparency    uint32
	HasTransparency bool

	LineWeight int16
	Invisible  bool
	// ExtrusionZ is the Z component of the extrusion direction, group
	// 230. Anything other than 1 means the entity is projected from an
	// object coordinate system this model does not handle.
	ExtrusionZ float64

	Data EntityData
}

// EntityData is implemented by the entity variants below.
type EntityData interface {
	isEntityData()
}

type Line struct {
	Start, End Point
}

type Circle struct {
	Center Point
	Radius float64
}

// Arc angles are in degrees, counterclockwise from the positive X
// axis in drawing coordinates.
type Arc struct {
	Center     Point
	Radius     float64
	Start, End float64
}

// A PolylineVertex pairs a position with the bulge of the segment that
// follows it. A bulge of 0 is a straight segment; otherwise it is the
// tangent of a quarter of the included arc angle, negative for
// clockwise arcs.
type PolylineVertex struct {
	Point Point
	Bulge float64
}

type LwPolyline struct {
	Closed   bool
	Vertices []PolylineVertex
}

// Polyline is the legacy POLYLINE/VERTEX/SEQEND form. Mesh marks the
// 3D mesh and polyface variants, which have no planar rendering.
type Polyline struct {
	Closed   bool
	Mesh     bool
	Vertices []PolylineVertex
}

type Spline struct {
	Closed   bool
	Degree   int
	Knots    []float64
	Controls []Point
}

// An Insert references a block definition, optionally repeated as a
// rectangular array of Columns by Rows instances.
type Insert struct {
	Block            string
	Position         Point
	ScaleX, ScaleY   float64
	Rotation         float64
	Columns, Rows    int
	ColumnSpacing    float64
	RowSpacing       float64
}

type Text struct {
	Value        string
	Position     Point
	Height       float64
	Rotation     float64
	ObliqueAngle float64
	Style        string
}

// MText carries formatted multi-line text. Width is the reference
// column width for word wrapping, 0 for none. Attachment is group 71,
// the 1 through 9 corner-and-edge insertion point grid. XAxis is the
// direction vector alternative to Rotation; HasXAxis records which of
// the two the file used.
type MText struct {
	Value      string
	Position   Point
	Height     float64
	Width      float64
	Rotation   float64
	XAxis      Point
	HasXAxis   bool
	Attachment int
	Style      string
}

// Unknown preserves the type name of entities the reader does not
// model, so callers can report what they skipped.
type Unknown struct {
	Type string
}

func (Line) isEntityData()       {}
func (Circle) isEntityData()     {}
func (Arc) isEntityData()        {}
func (LwPolyline) isEntityData() {}
func (Polyline) isEntityData()   {}
func (Spline) isEntityData()     {}
func (Insert) isEntityData()     {}
func (Text) isEntityData()       {}
func (MText) isEntityData()      {}
func (Unknown) isEntityData()    {}
