// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package colour parses and formats colours for the commands.
package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Default colours of the light and dark modules.
var (
	White = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	Black = color.NRGBA{0x00, 0x00, 0x00, 0xff}
)

// A SpecError reports an unparseable colour.
type SpecError string

func (e SpecError) Error() string { return fmt.Sprintf("%q: bad colour spec", string(e)) }

// Parse parses a colour given as 3, 4, 6 or 8 hex digits, optionally
// preceded by '#', or as an SVG colour name.  Digits beyond RGB are
// alpha; 3 and 4 digit forms repeat each digit.
func Parse(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if c, ok := colornames.Map[name]; ok {
		return color.NRGBA{c.R, c.G, c.B, c.A}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, SpecError(s)
	}
	switch len(hex) {
	case 3:
		n = n<<4 | 0xf
		fallthrough
	case 4:
		var nn uint64
		for i := 0; i < 4; i++ {
			nn <<= 8
			nn |= n >> 12 & 0xf * 0x11
			n <<= 4
		}
		n = nn
	case 6:
		n = n<<8 | 0xff
	case 8:
	default:
		return color.NRGBA{}, SpecError(s)
	}
	return color.NRGBA{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}

// ParseOr parses s, returning def if s is empty or bad.
func ParseOr(s string, def color.NRGBA) color.NRGBA {
	if c, err := Parse(s); err == nil {
		return c
	}
	return def
}

// Hex formats c as #rrggbb, or #rrggbbaa if c is not opaque.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// SVG returns c as an SVG 1.1 paint value and its opacity.
func SVG(c color.Color) (paint string, opacity float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 0xff
}
