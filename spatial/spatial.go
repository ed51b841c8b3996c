// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package spatial builds static query indices over an assembled drawing:
// a segment-level R-tree for culling and picking shapes, and a box-level
// R-tree for culling measured text. The indices are snapshots; rebuild
// them when the drawing's geometry changes (view changes do not count,
// the indices live in model space).
package spatial

import (
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
	"honnef.co/go/curve"

	"github.com/planch/planch"
	"github.com/planch/planch/dxfscene"
	"github.com/planch/planch/typeset"
)

// accuracy bounds the error of nearest-point solves on curved segments.
const accuracy = 1e-6

// epsilon inflates degenerate extents; R-tree rectangles must have
// positive volume, but axis-aligned lines and points are common in
// drawings.
const epsilon = 1e-9

type segEntry struct {
	rect rtreego.Rect
	idx  int
}

func (e *segEntry) Bounds() rtreego.Rect { return e.rect }

func toRect(r curve.Rect) rtreego.Rect {
	rect, err := rtreego.NewRect(
		rtreego.Point{r.X0, r.Y0},
		[]float64{max(r.X1-r.X0, epsilon), max(r.Y1-r.Y0, epsilon)},
	)
	if err != nil {
		panic(err)
	}
	return rect
}

// ShapeIndex indexes every path segment of a drawing's shapes in world
// space.
type ShapeIndex struct {
	tree *rtreego.Rtree
	// Parallel per-segment slices, in drawing order. Segment order is
	// the pick tiebreaker: among equally near candidates the highest
	// index, i.e. the latest drawn, wins.
	segs     []curve.PathSegment
	items    []planch.ItemHandle
	entities []dxfscene.EntityHandle
	bounds   curve.Rect
	occupied bool
}

// NewShapeIndex flattens the drawing's shapes into world-space segments
// and bulk-loads them into an R-tree.
func NewShapeIndex(d *dxfscene.Drawing) *ShapeIndex {
	ix := &ShapeIndex{}
	var entries []rtreego.Spatial
	for _, ih := range d.Layer.Indices {
		item, ok := d.Bag.Item(ih)
		if !ok {
			continue
		}
		shape, ok := item.(planch.FatShape)
		if !ok {
			continue
		}
		path := shape.Path.Transform(d.Bag.World(shape.Transform))
		for seg := range path.Segments() {
			bb := seg.BoundingBox()
			ix.grow(bb)
			entries = append(entries, &segEntry{rect: toRect(bb), idx: len(ix.segs)})
			ix.segs = append(ix.segs, seg)
			ix.items = append(ix.items, ih)
			ix.entities = append(ix.entities, d.ItemEntity[ih])
		}
	}
	ix.tree = rtreego.NewTree(2, 25, 50, entries...)
	return ix
}

// Bounds returns the rectangle enclosing every indexed segment, or the
// zero rectangle for a drawing without shapes.
func (ix *ShapeIndex) Bounds() curve.Rect { return ix.bounds }

func (ix *ShapeIndex) grow(r curve.Rect) {
	if !ix.occupied {
		ix.bounds = r
		ix.occupied = true
		return
	}
	ix.bounds.X0 = min(ix.bounds.X0, r.X0)
	ix.bounds.Y0 = min(ix.bounds.Y0, r.Y0)
	ix.bounds.X1 = max(ix.bounds.X1, r.X1)
	ix.bounds.Y1 = max(ix.bounds.Y1, r.Y1)
}

// Cull returns the set of items with at least one segment whose bounding
// box intersects view.
func (ix *ShapeIndex) Cull(view curve.Rect) map[planch.ItemHandle]struct{} {
	out := make(map[planch.ItemHandle]struct{})
	for _, s := range ix.tree.SearchIntersect(toRect(view)) {
		out[ix.items[s.(*segEntry).idx]] = struct{}{}
	}
	return out
}

// Pick returns the entity nearest to pt among those within radius of it.
// Candidates come from a square query, but acceptance uses the exact
// curve distance, so a segment whose box overlaps the square is still
// rejected when its nearest point lies farther than radius. Ties go to
// the latest drawn candidate. A zero radius picks only exact hits, which
// includes the midpoint of a straight segment.
func (ix *ShapeIndex) Pick(pt curve.Point, radius float64) (dxfscene.EntityHandle, bool) {
	half := max(radius, epsilon)
	query, err := rtreego.NewRect(
		rtreego.Point{pt.X - half, pt.Y - half},
		[]float64{2 * half, 2 * half},
	)
	if err != nil {
		panic(err)
	}

	cands := ix.tree.SearchIntersect(query)
	idxs := make([]int, len(cands))
	for i, s := range cands {
		idxs[i] = s.(*segEntry).idx
	}
	slices.Sort(idxs)

	var (
		best   dxfscene.EntityHandle
		bestSq = math.Inf(1)
		found  bool
	)
	limit := radius * radius
	for _, i := range idxs {
		distSq, _ := ix.segs[i].Nearest(pt, accuracy)
		if distSq <= limit && distSq <= bestSq {
			best, bestSq, found = ix.entities[i], distSq, true
		}
	}
	return best, found
}

// TextIndex indexes the measured world-space bounding boxes of a
// drawing's text items.
type TextIndex struct {
	tree  *rtreego.Rtree
	items []planch.ItemHandle
	boxes []curve.Rect
}

// NewTextIndex measures every text item of the drawing and bulk-loads
// the attachment-corrected, insertion-placed boxes into an R-tree.
func NewTextIndex(env *typeset.Environment, d *dxfscene.Drawing) *TextIndex {
	ix := &TextIndex{}
	var entries []rtreego.Spatial
	for _, ih := range d.Layer.Indices {
		item, ok := d.Bag.Item(ih)
		if !ok {
			continue
		}
		text, ok := item.(planch.FatText)
		if !ok {
			continue
		}
		layout := env.Measure(text)
		box := layout.Bounds(text.Attachment, text.Insertion, d.Bag.World(text.Transform))
		entries = append(entries, &segEntry{rect: toRect(box), idx: len(ix.items)})
		ix.items = append(ix.items, ih)
		ix.boxes = append(ix.boxes, box)
	}
	ix.tree = rtreego.NewTree(2, 25, 50, entries...)
	return ix
}

// Cull returns the set of text items whose measured box intersects view.
func (ix *TextIndex) Cull(view curve.Rect) map[planch.ItemHandle]struct{} {
	out := make(map[planch.ItemHandle]struct{})
	for _, s := range ix.tree.SearchIntersect(toRect(view)) {
		out[ix.items[s.(*segEntry).idx]] = struct{}{}
	}
	return out
}

// Box returns the measured world-space box of a text item, if it is in
// the index.
func (ix *TextIndex) Box(h planch.ItemHandle) (curve.Rect, bool) {
	for i, ih := range ix.items {
		if ih == h {
			return ix.boxes[i], true
		}
	}
	return curve.Rect{}, false
}
