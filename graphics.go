// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package planch provides a retained vector scene for CAD drawings: an
// arena-based graphics bag holding items, shared paints, and a transform
// hierarchy with cached world transforms, plus ordered render layers that an
// external renderer consumes.
//
// The bag and its layers are not safe for concurrent mutation. They are
// designed for exclusive ownership by a single consumer, typically the one
// "current drawing" of an interactive session.
package planch

import (
	"fmt"

	"honnef.co/go/curve"
)

// ItemHandle identifies a GraphicsItem within one GraphicsBag. Handles are
// assigned monotonically at push time and are never reused or invalidated for
// the lifetime of the bag.
type ItemHandle int

// PaintHandle identifies a FatPaint in a bag's palette. Multiple items may
// share one handle, so updating the paint behind a handle propagates to every
// referencing item.
type PaintHandle int

// TransformHandle identifies a node in a bag's transform hierarchy. The zero
// handle is the implicit identity root that every bag starts with.
type TransformHandle int

// Root is the transform handle of the implicit root node.
const Root TransformHandle = 0

// GraphicsItem is an item in a GraphicsBag, either a FatShape or a FatText.
type GraphicsItem interface {
	isGraphicsItem()
}

func (FatShape) isGraphicsItem() {}
func (FatText) isGraphicsItem()  {}

type transformNode struct {
	parent TransformHandle
	local  curve.Affine
}

// GraphicsBag owns an item arena, a paint palette, and a transform hierarchy.
//
// The transform hierarchy maintains the invariant that a child's slot index is
// always greater than its parent's, so a single forward pass over increasing
// indices re-derives every world transform after an update.
type GraphicsBag struct {
	items      []GraphicsItem
	paints     []FatPaint
	transforms []transformNode
	// worlds[i] is the finalized transform of node i, kept parallel to
	// transforms and recomputed eagerly on every update.
	worlds []curve.Affine
}

// NewGraphicsBag returns an empty bag whose transform hierarchy contains only
// the identity root.
func NewGraphicsBag() *GraphicsBag {
	return &GraphicsBag{
		transforms: []transformNode{{parent: Root, local: curve.Identity}},
		worlds:     []curve.Affine{curve.Identity},
	}
}

// Push appends an item to the bag and returns its handle.
func (b *GraphicsBag) Push(item GraphicsItem) ItemHandle {
	b.items = append(b.items, item)
	return ItemHandle(len(b.items) - 1)
}

// Item returns the item for h. The second return value is false if no item
// with that handle exists in this bag.
func (b *GraphicsBag) Item(h ItemHandle) (GraphicsItem, bool) {
	if h < 0 || int(h) >= len(b.items) {
		return nil, false
	}
	return b.items[h], true
}

// Items returns the number of items in the bag.
func (b *GraphicsBag) Items() int { return len(b.items) }

// RegisterPaint adds a paint to the palette and returns its handle.
func (b *GraphicsBag) RegisterPaint(p FatPaint) PaintHandle {
	b.paints = append(b.paints, p)
	return PaintHandle(len(b.paints) - 1)
}

// Paint returns the paint for h.
func (b *GraphicsBag) Paint(h PaintHandle) FatPaint {
	b.checkPaint(h)
	return b.paints[h]
}

// UpdatePaint replaces the paint for h. Every item referencing h observes the
// new value.
func (b *GraphicsBag) UpdatePaint(h PaintHandle, p FatPaint) {
	b.checkPaint(h)
	b.paints[h] = p
}

// RegisterTransform appends a node below parent with the given local
// transform and returns its handle. The returned handle always has a larger
// slot index than parent; the node's world transform is computed immediately.
func (b *GraphicsBag) RegisterTransform(parent TransformHandle, local curve.Affine) TransformHandle {
	b.checkTransform(parent)
	b.transforms = append(b.transforms, transformNode{parent: parent, local: local})
	b.worlds = append(b.worlds, b.worlds[parent].Mul(local))
	return TransformHandle(len(b.transforms) - 1)
}

// Local returns the local transform of h.
func (b *GraphicsBag) Local(h TransformHandle) curve.Affine {
	b.checkTransform(h)
	return b.transforms[h].local
}

// Parent returns the parent of h. The root is its own parent.
func (b *GraphicsBag) Parent(h TransformHandle) TransformHandle {
	b.checkTransform(h)
	return b.transforms[h].parent
}

// World returns the finalized transform of h, the composition of every local
// transform from h up to the root.
func (b *GraphicsBag) World(h TransformHandle) curve.Affine {
	b.checkTransform(h)
	return b.worlds[h]
}

// UpdateTransform replaces the local transform of h and re-derives the world
// transforms of every node with slot index ≥ h. This recomputes more nodes
// than strictly necessary when unrelated siblings follow h, which is an
// acceptable trade at drawing scale.
func (b *GraphicsBag) UpdateTransform(h TransformHandle, local curve.Affine) {
	b.checkTransform(h)
	b.transforms[h].local = local
	b.finalize(h)
}

// TransformUpdate pairs a transform handle with its new local value for
// UpdateTransforms.
type TransformUpdate struct {
	Handle TransformHandle
	Local  curve.Affine
}

// UpdateTransforms applies every update, then finalizes once starting from
// the minimum affected slot. Batching a whole tick's updates (the view root
// plus every scale-dependent node) costs one forward pass instead of one per
// update.
func (b *GraphicsBag) UpdateTransforms(updates []TransformUpdate) {
	if len(updates) == 0 {
		return
	}
	lowest := TransformHandle(len(b.transforms))
	for _, u := range updates {
		b.checkTransform(u.Handle)
		b.transforms[u.Handle].local = u.Local
		if u.Handle < lowest {
			lowest = u.Handle
		}
	}
	b.finalize(lowest)
}

func (b *GraphicsBag) finalize(from TransformHandle) {
	if from == Root {
		b.worlds[Root] = b.transforms[Root].local
		from++
	}
	for i := int(from); i < len(b.transforms); i++ {
		n := b.transforms[i]
		// n.parent < i always holds, so worlds[n.parent] is already final.
		b.worlds[i] = b.worlds[n.parent].Mul(n.local)
	}
}

func (b *GraphicsBag) checkPaint(h PaintHandle) {
	if h < 0 || int(h) >= len(b.paints) {
		panic(fmt.Sprintf("planch: paint handle %d is not owned by this bag", h))
	}
}

func (b *GraphicsBag) checkTransform(h TransformHandle) {
	if h < 0 || int(h) >= len(b.transforms) {
		panic(fmt.Sprintf("planch: transform handle %d is not owned by this bag", h))
	}
}
