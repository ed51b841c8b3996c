// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxf

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Open reads the DXF file at path.
func Open(path string) (*Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("dxf: reading %s: %w", path, err)
	}
	return d, nil
}

// Read parses an ASCII DXF stream. Sections and entity types the
// reader does not model are skipped, not rejected.
func Read(r io.Reader) (*Drawing, error) {
	s := NewScanner(r)
	d := &Drawing{
		Header: make(map[string]string),
		Layers: make(map[string]*Layer),
		Styles: make(map[string]*Style),
		Blocks: make(map[string]*Block),
	}
	for {
		t, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if t.Code != 0 {
			continue
		}
		switch t.Value {
		case "EOF":
			d.assignHandles()
			return d, nil
		case "SECTION":
			name, err := s.Next()
			if err != nil {
				return nil, err
			}
			if name.Code != 2 {
				return nil, fmt.Errorf("dxf: SECTION without a name tag, got group %d", name.Code)
			}
			switch name.Value {
			case "HEADER":
				err = readHeader(s, d)
			case "TABLES":
				err = readTables(s, d)
			case "BLOCKS":
				err = readBlocks(s, d)
			case "ENTITIES":
				d.Entities, err = readEntities(s, "ENDSEC")
			default:
				err = skipSection(s)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	// Streams without a trailing EOF tag are common enough to accept.
	d.assignHandles()
	return d, nil
}

func skipSection(s *Scanner) error {
	for {
		t, err := s.Next()
		if err != nil {
			return err
		}
		if t.Code == 0 && t.Value == "ENDSEC" {
			return nil
		}
	}
}

func readHeader(s *Scanner, d *Drawing) error {
	var name string
	for {
		t, err := s.Next()
		if err != nil {
			return err
		}
		switch {
		case t.Code == 0 && t.Value == "ENDSEC":
			return nil
		case t.Code == 9:
			name = t.Value
		case name != "":
			if _, dup := d.Header[name]; !dup {
				d.Header[name] = t.Value
			}
			if name == "$DWGCODEPAGE" {
				if cm, ok := codePages[strings.ToUpper(t.Value)]; ok {
					s.SetCharmap(cm)
				}
			}
		}
	}
}

func readTables(s *Scanner, d *Drawing) error {
	for {
		t, err := s.Next()
		if err != nil {
			return err
		}
		if t.Code != 0 {
			continue
		}
		switch t.Value {
		case "ENDSEC":
			return nil
		case "LAYER":
			l, err := readLayer(s)
			if err != nil {
				return err
			}
			d.Layers[l.Name] = l
		case "STYLE":
			st, err := readStyle(s)
			if err != nil {
				return err
			}
			d.Styles[st.Name] = st
		}
	}
}

func readLayer(s *Scanner) (*Layer, error) {
	l := &Layer{ColorIndex: 7, LineWeight: LineWeightDefault, On: true}
	for {
		t, err := s.Next()
		if err != nil {
			return nil, err
		}
		if t.Code == 0 {
			s.Unread(t)
			return l, nil
		}
		switch t.Code {
		case 2:
			l.Name = t.Value
		case 5:
			l.Handle = t.Hex()
		case 62:
			ci := t.Int()
			if ci < 0 {
				l.On = false
				ci = -ci
			}
			l.ColorIndex = ci
		case 370:
			l.LineWeight = int16(t.Int())
		}
	}
}

func readStyle(s *Scanner) (*Style, error) {
	st := &Style{WidthFactor: 1}
	for {
		t, err := s.Next()
		if err != nil {
			return nil, err
		}
		if t.Code == 0 {
			s.Unread(t)
			return st, nil
		}
		switch t.Code {
		case 2:
			st.Name = t.Value
		case 3:
			st.Font = t.Value
		case 40:
			st.Height = t.Float()
		case 41:
			st.WidthFactor = t.Float()
		case 50:
			st.ObliqueAngle = t.Float()
		}
	}
}

func readBlocks(s *Scanner, d *Drawing) error {
	for {
		t, err := s.Next()
		if err != nil {
			return err
		}
		if t.Code != 0 {
			continue
		}
		switch t.Value {
		case "ENDSEC":
			return nil
		case "BLOCK":
			b := &Block{}
			for {
				t, err := s.Next()
				if err != nil {
					return err
				}
				if t.Code == 0 {
					s.Unread(t)
					break
				}
				switch t.Code {
				case 2:
					b.Name = t.Value
				case 10:
					b.Base.X = t.Float()
				case 20:
					b.Base.Y = t.Float()
				}
			}
			b.Entities, err = readEntities(s, "ENDBLK")
			if err != nil {
				return err
			}
			d.Blocks[b.Name] = b
		}
	}
}

// readEntities parses a run of entities terminated by the given 0-group
// value, either ENDSEC or ENDBLK.
func readEntities(s *Scanner, until string) ([]*Entity, error) {
	var out []*Entity
	for {
		t, err := s.Next()
		if err != nil {
			return nil, err
		}
		if t.Code != 0 {
			return nil, fmt.Errorf("dxf: expected an entity type, got group %d %q", t.Code, t.Value)
		}
		if t.Value == until {
			return out, nil
		}
		e, err := readEntity(s, t.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

func readEntity(s *Scanner, typ string) (*Entity, error) {
	e := &Entity{ColorIndex: ColorByLayer, LineWeight: LineWeightByLayer, ExtrusionZ: 1}
	tags, err := entityTags(s, e)
	if err != nil {
		return nil, err
	}
	switch typ {
	case "LINE":
		e.Data = parseLine(tags)
	case "CIRCLE":
		e.Data = parseCircle(tags)
	case "ARC":
		e.Data = parseArc(tags)
	case "LWPOLYLINE":
		e.Data = parseLwPolyline(tags)
	case "POLYLINE":
		e.Data, err = parsePolyline(s, tags)
		if err != nil {
			return nil, err
		}
	case "SPLINE":
		e.Data = parseSpline(tags)
	case "INSERT":
		e.Data = parseInsert(tags)
	case "TEXT":
		e.Data = parseText(tags)
	case "MTEXT":
		e.Data = parseMText(tags)
	default:
		e.Data = Unknown{Type: typ}
	}
	return e, nil
}

// entityTags collects an entity's tags up to the next 0 group, peeling
// off the fields common to all entity types as it goes.
func entityTags(s *Scanner, e *Entity) ([]Tag, error) {
	var tags []Tag
	for {
		t, err := s.Next()
		if err != nil {
			return nil, err
		}
		switch t.Code {
		case 0:
			s.Unread(t)
			return tags, nil
		case 5:
			e.Handle = t.Hex()
		case 8:
			e.Layer = t.Value
		case 60:
			e.Invisible = t.Int() != 0
		case 62:
			e.ColorIndex = t.Int()
		case 230:
			e.ExtrusionZ = t.Float()
		case 370:
			e.LineWeight = int16(t.Int())
		case 420:
			e.TrueColor = uint32(t.Int())
			e.HasTrueColor = true
		case 440:
			e.Transparency = uint32(t.Int())
			e.HasTransparency = true
		default:
			tags = append(tags, t)
		}
	}
}

func parseLine(tags []Tag) Line {
	var l Line
	for _, t := range tags {
		switch t.Code {
		case 10:
			l.Start.X = t.Float()
		case 20:
			l.Start.Y = t.Float()
		case 11:
			l.End.X = t.Float()
		case 21:
			l.End.Y = t.Float()
		}
	}
	return l
}

func parseCircle(tags []Tag) Circle {
	var c Circle
	for _, t := range tags {
		switch t.Code {
		case 10:
			c.Center.X = t.Float()
		case 20:
			c.Center.Y = t.Float()
		case 40:
			c.Radius = t.Float()
		}
	}
	return c
}

func parseArc(tags []Tag) Arc {
	var a Arc
	for _, t := range tags {
		switch t.Code {
		case 10:
			a.Center.X = t.Float()
		case 20:
			a.Center.Y = t.Float()
		case 40:
			a.Radius = t.Float()
		case 50:
			a.Start = t.Float()
		case 51:
			a.End = t.Float()
		}
	}
	return a
}

func parseLwPolyline(tags []Tag) LwPolyline {
	var p LwPolyline
	for _, t := range tags {
		switch t.Code {
		case 70:
			p.Closed = t.Int()&1 != 0
		case 10:
			p.Vertices = append(p.Vertices, PolylineVertex{Point: Point{X: t.Float()}})
		case 20:
			if n := len(p.Vertices); n > 0 {
				p.Vertices[n-1].Point.Y = t.Float()
			}
		case 42:
			if n := len(p.Vertices); n > 0 {
				p.Vertices[n-1].Bulge = t.Float()
			}
		}
	}
	return p
}

// parsePolyline handles the POLYLINE header tags already read plus the
// VERTEX entities and SEQEND that follow it in the stream.
func parsePolyline(s *Scanner, tags []Tag) (Polyline, error) {
	var p Polyline
	for _, t := range tags {
		if t.Code == 70 {
			flags := t.Int()
			p.Closed = flags&1 != 0
			p.Mesh = flags&16 != 0 || flags&64 != 0
		}
	}
	for {
		t, err := s.Next()
		if err != nil {
			return p, err
		}
		if t.Code != 0 {
			continue
		}
		switch t.Value {
		case "SEQEND":
			// SEQEND carries common tags of its own; drop them.
			_, err := entityTags(s, &Entity{})
			return p, err
		case "VERTEX":
			var v PolylineVertex
			vt, err := entityTags(s, &Entity{})
			if err != nil {
				return p, err
			}
			for _, t := range vt {
				switch t.Code {
				case 10:
					v.Point.X = t.Float()
				case 20:
					v.Point.Y = t.Float()
				case 42:
					v.Bulge = t.Float()
				}
			}
			p.Vertices = append(p.Vertices, v)
		default:
			s.Unread(t)
			return p, nil
		}
	}
}

func parseSpline(tags []Tag) Spline {
	var sp Spline
	for _, t := range tags {
		switch t.Code {
		case 70:
			sp.Closed = t.Int()&1 != 0
		case 71:
			sp.Degree = t.Int()
		case 40:
			sp.Knots = append(sp.Knots, t.Float())
		case 10:
			sp.Controls = append(sp.Controls, Point{X: t.Float()})
		case 20:
			if n := len(sp.Controls); n > 0 {
				sp.Controls[n-1].Y = t.Float()
			}
		}
	}
	return sp
}

func parseInsert(tags []Tag) Insert {
	in := Insert{ScaleX: 1, ScaleY: 1, Columns: 1, Rows: 1}
	for _, t := range tags {
		switch t.Code {
		case 2:
			in.Block = t.Value
		case 10:
			in.Position.X = t.Float()
		case 20:
			in.Position.Y = t.Float()
		case 41:
			in.ScaleX = t.Float()
		case 42:
			in.ScaleY = t.Float()
		case 50:
			in.Rotation = t.Float()
		case 70:
			if n := t.Int(); n > 0 {
				in.Columns = n
			}
		case 71:
			if n := t.Int(); n > 0 {
				in.Rows = n
			}
		case 44:
			in.ColumnSpacing = t.Float()
		case 45:
			in.RowSpacing = t.Float()
		}
	}
	return in
}

func parseText(tags []Tag) Text {
	tx := Text{Style: "STANDARD"}
	for _, t := range tags {
		switch t.Code {
		case 1:
			tx.Value = t.Value
		case 7:
			tx.Style = t.Value
		case 10:
			tx.Position.X = t.Float()
		case 20:
			tx.Position.Y = t.Float()
		case 40:
			tx.Height = t.Float()
		case 50:
			tx.Rotation = t.Float()
		case 51:
			tx.ObliqueAngle = t.Float()
		}
	}
	return tx
}

func parseMText(tags []Tag) MText {
	mt := MText{Style: "STANDARD", Attachment: 1}
	var chunks []string
	for _, t := range tags {
		switch t.Code {
		case 1:
			chunks = append(chunks, t.Value)
		case 3:
			// Continuation chunks precede the final group 1 chunk.
			chunks = append(chunks, t.Value)
		case 7:
			mt.Style = t.Value
		case 10:
			mt.Position.X = t.Float()
		case 20:
			mt.Position.Y = t.Float()
		case 11:
			mt.XAxis.X = t.Float()
			mt.HasXAxis = true
		case 21:
			mt.XAxis.Y = t.Float()
			mt.HasXAxis = true
		case 40:
			mt.Height = t.Float()
		case 41:
			mt.Width = t.Float()
		case 50:
			mt.Rotation = t.Float()
		case 71:
			mt.Attachment = t.Int()
		}
	}
	mt.Value = strings.Join(chunks, "")
	return mt
}
