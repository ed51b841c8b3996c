// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import (
	"image/color"
	"slices"

	"honnef.co/go/curve"

	"github.com/planch/planch"
	"github.com/planch/planch/dxf"
)

// Options configures loading.
type Options struct {
	// AllLayers loads entities on switched-off layers too. They can
	// still be filtered at render time through EnabledLayers.
	AllLayers bool
}

// A Drawing is the assembled scene for one DXF document.
type Drawing struct {
	// Bag holds the drawing's items, paints, and transforms.
	Bag *planch.GraphicsBag
	// Layer lists the items in drawing order.
	Layer planch.RenderLayer
	// ItemEntity maps each item back to its source entity.
	ItemEntity map[planch.ItemHandle]EntityHandle
	// EntityLayer maps each converted entity to its layer.
	EntityLayer map[EntityHandle]LayerHandle
	// EnabledLayers holds the layers that were switched on in the file.
	EnabledLayers map[LayerHandle]bool
	// LayerNames maps layer handles to their table names.
	LayerNames map[LayerHandle]string
	// Restrokes lists the paints whose stroke widths must be adapted to
	// the view; see RestrokePaint.
	Restrokes []RestrokePaint

	source *dxf.Drawing
}

// Detail returns the original entity record behind a handle, for
// inspection on pick.
func (d *Drawing) Detail(eh EntityHandle) (*dxf.Entity, bool) {
	return d.source.EntityByHandle(uint64(eh))
}

// Source returns the parsed document the drawing was assembled from.
func (d *Drawing) Source() *dxf.Drawing {
	return d.source
}

// Load reads and assembles the DXF file at path. A failed read returns
// the error and no drawing; entities that cannot be converted are
// skipped individually.
func Load(path string, opts Options) (*Drawing, error) {
	doc, err := dxf.Open(path)
	if err != nil {
		return nil, err
	}
	return LoadDrawing(doc, opts)
}

// LoadDrawing assembles a parsed document into a scene.
func LoadDrawing(doc *dxf.Drawing, opts Options) (*Drawing, error) {
	bag := planch.NewGraphicsBag()
	// Paint slot 0 is the default paint; the view adapts its stroke to
	// one device pixel.
	bag.RegisterPaint(planch.FatPaint{Stroke: planch.SomeColor(color.NRGBA{A: 0xFF})})

	out := &Drawing{
		Bag:           bag,
		ItemEntity:    make(map[planch.ItemHandle]EntityHandle),
		EntityLayer:   make(map[EntityHandle]LayerHandle),
		EnabledLayers: make(map[LayerHandle]bool),
		LayerNames:    make(map[LayerHandle]string),
		source:        doc,
	}

	layers := make(map[string]*dxf.Layer, len(doc.Layers))
	layerHandles := make(map[string]LayerHandle, len(doc.Layers))
	visible := make(map[string]bool, len(doc.Layers))
	{
		// Old files may omit layer handles; synthesize them above the
		// highest present so every layer is addressable. Names are
		// walked in sorted order to keep synthetic handles stable.
		names := make([]string, 0, len(doc.Layers))
		var max uint64
		for name, l := range doc.Layers {
			names = append(names, name)
			if l.Handle > max {
				max = l.Handle
			}
		}
		slices.Sort(names)
		for _, name := range names {
			l := doc.Layers[name]
			layers[name] = l
			if l.Handle == 0 {
				max++
				l.Handle = max
			}
			lh := LayerHandle(l.Handle)
			layerHandles[name] = lh
			out.LayerNames[lh] = name
			if l.On {
				out.EnabledLayers[lh] = true
				visible[name] = true
			}
		}
	}

	shapes := resolveBlocks(doc, layers)
	styles := textStyles(doc)
	sr := newStyleResolver(bag, layers)

	for _, e := range doc.Entities {
		if e.Invisible {
			continue
		}
		if e.Layer != "" && !visible[e.Layer] && !opts.AllLayers {
			continue
		}

		eh := EntityHandle(e.Handle)
		lh := layerHandles[e.Layer]
		push := func(item planch.GraphicsItem) {
			ih := out.Layer.PushWithBag(bag, item)
			out.ItemEntity[ih] = eh
			out.EntityLayer[eh] = lh
		}

		entityPaint := sr.resolve(e, e.LineWeight, colorEnum(e), e.TrueColor)

		switch data := e.Data.(type) {
		case dxf.Insert:
			if e.ExtrusionZ != 1 {
				continue
			}
			// One item per array cell, so each instance culls and picks
			// on its own.
			for i := 0; i < data.Rows; i++ {
				for j := 0; j < data.Columns; j++ {
					cell := instanceTransform(data, i, j)
					for _, c := range shapes[data.Block] {
						w, ce, rgb := c.weight, c.color, c.rgb
						if w == dxf.LineWeightByBlock {
							// BYBLOCK inherits from this insert.
							w = e.LineWeight
						}
						if ce == 0 {
							ce, rgb = colorEnum(e), e.TrueColor
						}
						paint := sr.resolve(e, w, ce, rgb)
						push(planch.FatShape{Paint: paint, Path: c.path.Transform(cell)})
					}
				}
			}
		case dxf.MText:
			if e.ExtrusionZ != 1 {
				continue
			}
			push(mtextItem(data, styles, entityPaint))
		case dxf.Text:
			if e.ExtrusionZ != 1 {
				continue
			}
			push(textItem(data, styles, entityPaint))
		default:
			if p, ok := PathFromEntity(e); ok {
				push(planch.FatShape{Paint: entityPaint, Path: p})
			}
		}
	}

	out.Restrokes = sr.restrokes
	return out, nil
}

func vec2(x, y float64) curve.Vec2 {
	return curve.Vec2{X: x, Y: y}
}
