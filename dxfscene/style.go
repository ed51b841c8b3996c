// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import (
	"image/color"

	"golang.org/x/exp/constraints"

	"github.com/planch/planch"
	"github.com/planch/planch/dxf"
)

// EntityHandle identifies one source entity of a loaded drawing.
type EntityHandle uint64

// LayerHandle identifies one layer of a loaded drawing.
type LayerHandle uint64

// Micrometers is a physical length in micrometers.
type Micrometers uint64

const (
	Micrometer Micrometers = 1
	Millimeter Micrometers = 1000 * Micrometer
	Inch       Micrometers = 25400 * Micrometer
)

// defaultLineWeight is the weight used wherever the lineweight
// enumeration cannot be resolved to a value, 0.25 mm.
const defaultLineWeight = 250 * Micrometer

// A RestrokePaint pairs a physical line weight with the palette paint
// carrying it. Stroke widths in this system are view dependent, so the
// paints are registered without a width and adapted whenever the view
// scale or device pitch changes.
type RestrokePaint struct {
	// Weight is the physical line weight.
	Weight Micrometers
	Handle planch.PaintHandle
}

// Adapt recomputes the paint's stroke width for a device.
//
// For legacy reasons many lines in drawings have weight 0; interactive
// applications are expected to show those, and really every line, at
// least one display pixel wide. minStroke should therefore be the width
// of a one-device-pixel stroke at default scale. maxStroke bounds the
// other end, which matters mostly for plotters.
//
//   - bag: the graphics bag holding the paint to update.
//   - pitch: physical pitch of a 1.0 stroke, generally one display pixel.
//   - viewScale: uniform scale of the drawing view transform.
func (rp RestrokePaint) Adapt(bag *planch.GraphicsBag, pitch Micrometers, viewScale, minStroke, maxStroke float64) {
	pxw := clamp(float64(rp.Weight)/float64(pitch), minStroke, maxStroke)
	p := bag.Paint(rp.Handle)
	p.StrokeWidth = pxw / viewScale
	bag.UpdatePaint(rp.Handle, p)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// colorEnum recovers the color enumeration of an entity: 0 by-block,
// 256 by-layer, 257 by-entity (24-bit color present), 1 through 255 an
// indexed color.
func colorEnum(e *dxf.Entity) int {
	if e.HasTrueColor {
		return 257
	}
	return e.ColorIndex
}

type paintKey struct {
	rgba   uint32
	weight Micrometers
}

// styleResolver interns (color, weight) pairs into the bag's palette.
// Identical pairs share one handle, so a later restroke update reaches
// every item drawn with that style.
type styleResolver struct {
	bag       *planch.GraphicsBag
	layers    map[string]*dxf.Layer
	interned  map[paintKey]planch.PaintHandle
	restrokes []RestrokePaint
}

func newStyleResolver(bag *planch.GraphicsBag, layers map[string]*dxf.Layer) *styleResolver {
	return &styleResolver{
		bag:      bag,
		layers:   layers,
		interned: make(map[paintKey]planch.PaintHandle),
	}
}

// resolve produces the paint handle for an entity with the given
// lineweight and color enumerations, which may differ from the entity's
// own when a by-block value was substituted during block expansion.
// rgb supplies the 24-bit color when ce is 257.
func (sr *styleResolver) resolve(e *dxf.Entity, lw int16, ce int, rgb uint32) planch.PaintHandle {
	layer := sr.layers[e.Layer]

	var opaque uint32
	switch {
	case ce == 257:
		opaque = rgb & 0xFFFFFF
	case ce == 256:
		// BYLAYER; opaque white when the layer has no resolvable color.
		opaque = 0xFFFFFF
		if layer != nil && layer.ColorIndex >= 1 && layer.ColorIndex <= 255 {
			opaque = aci[layer.ColorIndex]
		}
	case ce >= 1 && ce <= 255:
		opaque = aci[ce]
	default:
		// Other values are not valid in this context.
		opaque = 0xFFFFFF
	}
	var tb uint32
	if e.HasTransparency {
		tb = e.Transparency & 0xFF
	}
	alpha := uint8(0xFF - tb)

	var weight Micrometers
	switch {
	case lw >= 0:
		weight = Micrometers(lw) * 10 * Micrometer
	case lw == dxf.LineWeightByLayer:
		// BYLAYER and BYBLOCK are both meaningless in a layer, so any
		// enumeration stored there falls through to the default.
		if layer != nil && layer.LineWeight > 0 {
			weight = Micrometers(layer.LineWeight) * 10 * Micrometer
		} else {
			weight = defaultLineWeight
		}
	default:
		// BYBLOCK does not belong at the entity level; that and
		// out-of-range enumerations get the default.
		weight = defaultLineWeight
	}

	key := paintKey{rgba: opaque<<8 | uint32(alpha), weight: weight}
	if h, ok := sr.interned[key]; ok {
		return h
	}
	c := color.NRGBA{R: uint8(opaque >> 16), G: uint8(opaque >> 8), B: uint8(opaque), A: alpha}
	// No stroke width yet; the first restroke adaptation sets it.
	h := sr.bag.RegisterPaint(planch.FatPaint{Stroke: planch.SomeColor(c)})
	sr.interned[key] = h
	sr.restrokes = append(sr.restrokes, RestrokePaint{Weight: weight, Handle: h})
	return h
}
