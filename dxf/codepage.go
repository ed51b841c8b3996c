// Copyright 2025 the Planch Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package dxf

import "golang.org/x/text/encoding/charmap"

// codePages maps the $DWGCODEPAGE header values seen in the wild to
// their decoders. Files written with an unlisted code page are read as
// plain bytes.
var codePages = map[string]*charmap.Charmap{
	"ANSI_874":  charmap.Windows874,
	"ANSI_1250": charmap.Windows1250,
	"ANSI_1251": charmap.Windows1251,
	"ANSI_1252": charmap.Windows1252,
	"ANSI_1253": charmap.Windows1253,
	"ANSI_1254": charmap.Windows1254,
	"ANSI_1255": charmap.Windows1255,
	"ANSI_1256": charmap.Windows1256,
	"ANSI_1257": charmap.Windows1257,
	"ANSI_1258": charmap.Windows1258,
}
