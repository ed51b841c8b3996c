// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package planch

// RenderLayer is an ordered view of item handles in z order. It does not own
// the items; several layers may be backed by the same bag, e.g. a full
// drawing layer and an ephemeral highlight layer.
type RenderLayer struct {
	Indices []ItemHandle
}

// PushWithBag pushes an item into the bag and appends its handle to the
// layer, returning the handle.
func (rl *RenderLayer) PushWithBag(bag *GraphicsBag, item GraphicsItem) ItemHandle {
	h := bag.Push(item)
	rl.Indices = append(rl.Indices, h)
	return h
}

// Filter returns a new layer containing, in order, the handles for which keep
// returns true.
func (rl *RenderLayer) Filter(keep func(ItemHandle) bool) RenderLayer {
	var out RenderLayer
	for _, h := range rl.Indices {
		if keep(h) {
			out.Indices = append(out.Indices, h)
		}
	}
	return out
}
