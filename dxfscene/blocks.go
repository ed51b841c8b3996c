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

// A chunk is a run of block geometry sharing one style, in drawing
// order. By-layer values are resolved while the block resolves;
// by-block values stay symbolic until an insert supplies them, so the
// weight may still be the by-block sentinel and the color enum may
// still be 0.
type chunk struct {
	weight int16
	color  int
	// rgb is the 24-bit color when color is 257.
	rgb  uint32
	path curve.BezPath
}

type blockShapes map[string][]chunk

// resolveBlocks resolves every block into style chunks. Blocks that
// insert other blocks resolve once their dependencies have; repeated
// passes run until a pass makes no progress, which leaves genuinely
// cyclic or dangling references unresolved instead of looping.
func resolveBlocks(doc *dxf.Drawing, layers map[string]*dxf.Layer) blockShapes {
	resolved := make(blockShapes, len(doc.Blocks))
	unresolved := make([]string, 0, len(doc.Blocks))
	for name := range doc.Blocks {
		unresolved = append(unresolved, name)
	}
	slices.Sort(unresolved)

	for len(unresolved) > 0 {
		var remaining []string
		for _, name := range unresolved {
			chunks, ok := resolveBlock(doc.Blocks[name], resolved, layers)
			if !ok {
				remaining = append(remaining, name)
				continue
			}
			resolved[name] = chunks
		}
		if len(remaining) == len(unresolved) {
			planch.Logger().Warn("blocks with unresolvable nesting left empty", "blocks", remaining)
			break
		}
		unresolved = remaining
	}
	return resolved
}

// blockStyle resolves the per-entity style as far as block resolution
// can: by-layer values against the layer table, everything else kept.
func blockStyle(layers map[string]*dxf.Layer, e *dxf.Entity) (int16, int, uint32) {
	layer := layers[e.Layer]

	lw := e.LineWeight
	if lw == dxf.LineWeightByLayer {
		if layer != nil && layer.LineWeight >= 0 {
			lw = layer.LineWeight
		} else {
			lw = 25
		}
	}

	ce := colorEnum(e)
	var rgb uint32
	switch {
	case ce == 257:
		rgb = e.TrueColor & 0xFFFFFF
	case ce == 256:
		// White when the layer has no resolvable color.
		ce = 7
		if layer != nil && layer.ColorIndex >= 1 && layer.ColorIndex <= 255 {
			ce = layer.ColorIndex
		}
	}
	return lw, ce, rgb
}

// resolveBlock chunks one block's entities by style, in drawing order,
// so a single block may emit several chunks. It reports false when the
// block inserts a block that has not resolved yet.
func resolveBlock(b *dxf.Block, resolved blockShapes, layers map[string]*dxf.Layer) ([]chunk, bool) {
	var chunks []chunk
	if len(b.Entities) == 0 {
		return chunks, true
	}

	var lines curve.BezPath
	curW, curC, curRGB := blockStyle(layers, b.Entities[0])
	flush := func() {
		if len(lines) > 0 {
			chunks = append(chunks, chunk{weight: curW, color: curC, rgb: curRGB, path: lines})
			lines = nil
		}
	}

	for _, e := range b.Entities {
		w, c, rgb := blockStyle(layers, e)
		if w != curW || c != curC || rgb != curRGB {
			flush()
			curW, curC, curRGB = w, c, rgb
		}

		ins, isInsert := e.Data.(dxf.Insert)
		if !isInsert {
			if p, ok := PathFromEntity(e); ok {
				lines = append(lines, p...)
			}
			continue
		}
		inner, ok := resolved[ins.Block]
		if !ok {
			// Depends on a block that has not resolved; try again on a
			// later pass.
			return nil, false
		}
		if e.ExtrusionZ != 1 {
			continue
		}
		flush()
		for _, ic := range inner {
			w, c, rgb := ic.weight, ic.color, ic.rgb
			if w == dxf.LineWeightByBlock {
				w = curW
			}
			if c == 0 {
				c, rgb = curC, curRGB
			}
			chunks = append(chunks, chunk{weight: w, color: c, rgb: rgb, path: arrayPath(ins, ic.path)})
		}
	}
	flush()
	return chunks, true
}

// arrayPath bakes every array cell of an insert into one path.
func arrayPath(ins dxf.Insert, p curve.BezPath) curve.BezPath {
	var out curve.BezPath
	for i := 0; i < ins.Rows; i++ {
		for j := 0; j < ins.Columns; j++ {
			out = append(out, p.Transform(instanceTransform(ins, i, j))...)
		}
	}
	return out
}

// instanceTransform is the placement of one array cell: scale, then the
// array offset, then rotation, then translation to the insertion point.
// The rotation flips sign with the y axis.
func instanceTransform(ins dxf.Insert, i, j int) curve.Affine {
	location := pointFrom(ins.Position)
	return curve.Scale(ins.ScaleX, ins.ScaleY).
		ThenTranslate(curve.Vec2{X: float64(j) * ins.ColumnSpacing, Y: float64(i) * ins.RowSpacing}).
		ThenRotate(-ins.Rotation * math.Pi / 180).
		ThenTranslate(curve.Vec2{X: location.X, Y: location.Y})
}
