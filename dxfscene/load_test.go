// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import (
	"math"
	"strings"
	"testing"

	"github.com/planch/planch"
	"github.com/planch/planch/dxf"
)

func loadDoc(t *testing.T, opts Options, pairs ...string) *Drawing {
	t.Helper()
	text := strings.Join(pairs, "\n") + "\n"
	doc, err := dxf.Read(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	d, err := LoadDrawing(doc, opts)
	if err != nil {
		t.Fatalf("LoadDrawing: %v", err)
	}
	return d
}

func shapeAt(t *testing.T, d *Drawing, i int) planch.FatShape {
	t.Helper()
	if i >= len(d.Layer.Indices) {
		t.Fatalf("layer has %d items, need index %d", len(d.Layer.Indices), i)
	}
	item, ok := d.Bag.Item(d.Layer.Indices[i])
	if !ok {
		t.Fatalf("item %d missing from bag", i)
	}
	s, ok := item.(planch.FatShape)
	if !ok {
		t.Fatalf("item %d is %T, not a shape", i, item)
	}
	return s
}

func TestLoadBlockArray(t *testing.T) {
	// One circle of radius 1, inserted as a 2x1 array with column
	// spacing 5: two shapes whose centers are 5 units apart.
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "BLOCKS",
		"0", "BLOCK", "2", "DOT",
		"0", "CIRCLE", "10", "0", "20", "0", "40", "1",
		"0", "ENDBLK",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "INSERT", "2", "DOT", "10", "0", "20", "0", "70", "2", "44", "5",
		"0", "ENDSEC",
		"0", "EOF",
	)
	if len(d.Layer.Indices) != 2 {
		t.Fatalf("got %d items, want 2", len(d.Layer.Indices))
	}
	a := shapeAt(t, d, 0).Path.BoundingBox()
	b := shapeAt(t, d, 1).Path.BoundingBox()
	ax, ay := (a.X0+a.X1)/2, (a.Y0+a.Y1)/2
	bx, by := (b.X0+b.X1)/2, (b.Y0+b.Y1)/2
	if dist := math.Hypot(bx-ax, by-ay); math.Abs(dist-5) > 1e-6 {
		t.Errorf("instance centers are %v apart, want 5", dist)
	}
	if w := a.X1 - a.X0; math.Abs(w-2) > 1e-3 {
		t.Errorf("instance width = %v, want 2", w)
	}
}

func TestLoadByBlockStyle(t *testing.T) {
	// The block line uses by-block color (62 = 0); the insert supplies
	// color index 1, red.
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "BLOCKS",
		"0", "BLOCK", "2", "B",
		"0", "LINE", "62", "0", "10", "0", "20", "0", "11", "1", "21", "0",
		"0", "ENDBLK",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "INSERT", "2", "B", "62", "1", "10", "0", "20", "0",
		"0", "ENDSEC",
		"0", "EOF",
	)
	if len(d.Layer.Indices) != 1 {
		t.Fatalf("got %d items, want 1", len(d.Layer.Indices))
	}
	got := strokeColor(t, d.Bag, shapeAt(t, d, 0).Paint)
	if got.R != 0xFF || got.G != 0 || got.B != 0 {
		t.Errorf("by-block color resolved to %+v, want red", got)
	}
}

func TestLoadNestedAndCyclicBlocks(t *testing.T) {
	// INNER resolves first, OUTER on the second pass. LOOP inserts
	// itself and must resolve to nothing instead of hanging the load.
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "BLOCKS",
		"0", "BLOCK", "2", "OUTER",
		"0", "INSERT", "2", "INNER", "10", "10", "20", "0",
		"0", "ENDBLK",
		"0", "BLOCK", "2", "INNER",
		"0", "LINE", "10", "0", "20", "0", "11", "1", "21", "0",
		"0", "ENDBLK",
		"0", "BLOCK", "2", "LOOP",
		"0", "INSERT", "2", "LOOP", "10", "0", "20", "0",
		"0", "ENDBLK",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "INSERT", "2", "OUTER", "10", "0", "20", "0",
		"0", "INSERT", "2", "LOOP", "10", "0", "20", "0",
		"0", "ENDSEC",
		"0", "EOF",
	)
	if len(d.Layer.Indices) != 1 {
		t.Fatalf("got %d items, want 1 (nested line only)", len(d.Layer.Indices))
	}
	bb := shapeAt(t, d, 0).Path.BoundingBox()
	if bb.X0 != 10 || bb.X1 != 11 {
		t.Errorf("nested line at [%v, %v], want [10, 11]", bb.X0, bb.X1)
	}
}

func TestLoadSkipsOffLayers(t *testing.T) {
	fixture := []string{
		"0", "SECTION", "2", "TABLES",
		"0", "TABLE", "2", "LAYER",
		"0", "LAYER", "2", "ON", "5", "10", "62", "1",
		"0", "LAYER", "2", "OFF", "5", "11", "62", "-1",
		"0", "ENDTAB",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "8", "ON", "10", "0", "20", "0", "11", "1", "21", "0",
		"0", "LINE", "8", "OFF", "10", "0", "20", "0", "11", "1", "21", "0",
		"0", "LINE", "8", "ON", "60", "1", "10", "0", "20", "0", "11", "1", "21", "0",
		"0", "ENDSEC",
		"0", "EOF",
	}
	d := loadDoc(t, Options{}, fixture...)
	if len(d.Layer.Indices) != 1 {
		t.Fatalf("got %d items, want 1", len(d.Layer.Indices))
	}
	if !d.EnabledLayers[LayerHandle(0x10)] || d.EnabledLayers[LayerHandle(0x11)] {
		t.Errorf("enabled layers = %v", d.EnabledLayers)
	}
	if d.LayerNames[LayerHandle(0x11)] != "OFF" {
		t.Errorf("layer names = %v", d.LayerNames)
	}

	// AllLayers keeps the off-layer line but never invisible entities.
	all := loadDoc(t, Options{AllLayers: true}, fixture...)
	if len(all.Layer.Indices) != 2 {
		t.Fatalf("with AllLayers got %d items, want 2", len(all.Layer.Indices))
	}
}

func TestLoadDetailRoundTrip(t *testing.T) {
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "5", "AB", "10", "1", "20", "2", "11", "3", "21", "4",
		"0", "ENDSEC",
		"0", "EOF",
	)
	eh, ok := d.ItemEntity[d.Layer.Indices[0]]
	if !ok {
		t.Fatal("item has no entity mapping")
	}
	if eh != 0xab {
		t.Fatalf("entity handle = %#x, want 0xab", uint64(eh))
	}
	e, ok := d.Detail(eh)
	if !ok {
		t.Fatal("detail lookup failed")
	}
	if l, ok := e.Data.(dxf.Line); !ok || l.Start != (dxf.Point{X: 1, Y: 2}) {
		t.Errorf("detail entity = %+v", e.Data)
	}
}

func TestLoadSharedRestroke(t *testing.T) {
	// Two lines share a style, the third differs. Adapting the shared
	// restroke changes both without touching the third.
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "62", "1", "370", "50", "10", "0", "20", "0", "11", "1", "21", "0",
		"0", "LINE", "62", "1", "370", "50", "10", "0", "20", "1", "11", "1", "21", "1",
		"0", "LINE", "62", "2", "370", "50", "10", "0", "20", "2", "11", "1", "21", "2",
		"0", "ENDSEC",
		"0", "EOF",
	)
	a, b, c := shapeAt(t, d, 0), shapeAt(t, d, 1), shapeAt(t, d, 2)
	if a.Paint != b.Paint {
		t.Fatal("identical styles did not intern to one paint")
	}
	if a.Paint == c.Paint {
		t.Fatal("distinct colors interned to one paint")
	}

	var shared RestrokePaint
	for _, rp := range d.Restrokes {
		if rp.Handle == a.Paint {
			shared = rp
		}
	}
	if shared.Weight != 500*Micrometer {
		t.Fatalf("shared weight = %d, want 500", shared.Weight)
	}
	shared.Adapt(d.Bag, Inch/96, 1, 1, 20)
	if w := d.Bag.Paint(b.Paint).StrokeWidth; w == 0 {
		t.Error("adaptation did not reach the second item")
	}
	if w := d.Bag.Paint(c.Paint).StrokeWidth; w != 0 {
		t.Error("adaptation leaked to an unrelated paint")
	}
}

func TestLoadMText(t *testing.T) {
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "TABLES",
		"0", "TABLE", "2", "STYLE",
		"0", "STYLE", "2", "NOTES", "40", "0", "41", "0.8", "3", "romand.shx",
		"0", "ENDTAB",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "MTEXT", "1", "45%%d\\Pnext", "7", "NOTES",
		"10", "2", "20", "3", "40", "2.5", "41", "40", "71", "3",
		"0", "ENDSEC",
		"0", "EOF",
	)
	item, _ := d.Bag.Item(d.Layer.Indices[0])
	txt, ok := item.(planch.FatText)
	if !ok {
		t.Fatalf("item is %T, not text", item)
	}
	if txt.Text != "45°\nnext" {
		t.Errorf("text = %q", txt.Text)
	}
	if txt.Attachment != planch.TopRight || txt.Alignment != planch.AlignRight {
		t.Errorf("attachment = %d, alignment = %d", txt.Attachment, txt.Alignment)
	}
	if txt.MaxInlineSize != 40 {
		t.Errorf("max inline size = %v", txt.MaxInlineSize)
	}
	// The style has no fixed height, so the entity height applies; the
	// family and weight come from the font file mapping.
	if txt.Style.Size != 2.5 || txt.Style.Family != planch.Serif || txt.Style.Weight != 700 {
		t.Errorf("style = %+v", txt.Style)
	}
	if txt.Insertion.Displacement != vec2(2, -3) {
		t.Errorf("insertion = %+v", txt.Insertion)
	}
}

func TestLoadTextRotation(t *testing.T) {
	d := loadDoc(t, Options{},
		"0", "SECTION", "2", "ENTITIES",
		"0", "TEXT", "1", "%%p5", "10", "1", "20", "1", "40", "3", "50", "90",
		"0", "ENDSEC",
		"0", "EOF",
	)
	item, _ := d.Bag.Item(d.Layer.Indices[0])
	txt := item.(planch.FatText)
	if txt.Text != "±5" {
		t.Errorf("text = %q", txt.Text)
	}
	if math.Abs(txt.Insertion.Angle+math.Pi/2) > 1e-12 {
		t.Errorf("angle = %v, want -pi/2", txt.Insertion.Angle)
	}
	if txt.Style.Size != 3 {
		t.Errorf("size = %v", txt.Style.Size)
	}
}
