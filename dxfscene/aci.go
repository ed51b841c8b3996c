// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxfscene

import "math"

// aci is the AutoCAD Color Index palette as 0xRRGGBB values. Indices 1
// through 9 and the gray ramp at 250 through 255 are fixed; the 240
// chromatic entries in between are generated from the standard layout of
// 24 hues, 15 degrees apart, in five brightness levels with a
// desaturated variant each.
var aci = buildACI()

func buildACI() [256]uint32 {
	var p [256]uint32

	fixed := map[int]uint32{
		0: 0xFFFFFF, // Index 0 is BYBLOCK; white keeps it visible if it leaks.
		1: 0xFF0000,
		2: 0xFFFF00,
		3: 0x00FF00,
		4: 0x00FFFF,
		5: 0x0000FF,
		6: 0xFF00FF,
		7: 0xFFFFFF,
		8: 0x808080,
		9: 0xC0C0C0,
	}
	for i, c := range fixed {
		p[i] = c
	}
	grays := [6]uint32{0x33, 0x5B, 0x84, 0xAD, 0xD6, 0xFF}
	for i, g := range grays {
		p[250+i] = g<<16 | g<<8 | g
	}

	brightness := [5]float64{1, 0.8, 0.6, 0.5, 0.33}
	for i := 10; i <= 249; i++ {
		hue := float64((i-10)/10) * 15
		j := (i - 10) % 10
		v := brightness[j/2]
		s := 1.0
		if j%2 == 1 {
			s = 0.55
		}
		p[i] = hsv(hue, s, v)
	}
	return p
}

// hsv converts hue in degrees, saturation and value in [0,1] to packed
// RGB.
func hsv(h, s, v float64) uint32 {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to := func(f float64) uint32 { return uint32(math.Round((f + m) * 255)) }
	return to(r)<<16 | to(g)<<8 | to(b)
}
