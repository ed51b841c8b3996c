// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxf

// A Layer is one record from the LAYER table.
type Layer struct {
	Name       string
	Handle     uint64
	ColorIndex int
	LineWeight int16
	// On is false for layers stored with a negated color index, the
	// convention for switched-off layers.
	On bool
}

// A Style is one record from the STYLE table, describing how TEXT and
// MTEXT entities that reference it are set.
type Style struct {
	Name string
	// Height is the fixed text height; 0 lets each entity choose.
	Height       float64
	WidthFactor  float64
	ObliqueAngle float64
	// Font is the primary font file name, for example "romans.shx".
	Font string
}

// A Block is a named group of entities instantiated by INSERT.
type Block struct {
	Name     string
	Base     Point
	Entities []*Entity
}

// A Drawing is a parsed DXF document.
type Drawing struct {
	// Header holds the $-variables from the HEADER section, keyed by
	// name, each with the first value tag that followed it.
	Header   map[string]string
	Layers   map[string]*Layer
	Styles   map[string]*Style
	Blocks   map[string]*Block
	Entities []*Entity

	byHandle map[uint64]*Entity
}

// EntityByHandle returns the entity with the given handle, from the
// ENTITIES section or any block definition.
func (d *Drawing) EntityByHandle(h uint64) (*Entity, bool) {
	e, ok := d.byHandle[h]
	return e, ok
}

// assignHandles gives entities that carried no handle a synthetic one
// above the highest seen, then builds the handle lookup. Old files
// predating mandatory handles otherwise could not be addressed.
func (d *Drawing) assignHandles() {
	var max uint64
	walk := func(es []*Entity) {
		for _, e := range es {
			if e.Handle > max {
				max = e.Handle
			}
		}
	}
	walk(d.Entities)
	for _, b := range d.Blocks {
		walk(b.Entities)
	}

	d.byHandle = make(map[uint64]*Entity)
	index := func(es []*Entity) {
		for _, e := range es {
			if e.Handle == 0 {
				max++
				e.Handle = max
			}
			d.byHandle[e.Handle] = e
		}
	}
	index(d.Entities)
	for _, b := range d.Blocks {
		index(b.Entities)
	}
}
