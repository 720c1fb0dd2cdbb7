// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/vector"

	"github.com/qrelement/qr/internal/colour"
)

// A Rect is a rectangle in module units.
type Rect struct {
	X, Y, W, H int
}

// A Path is a set of non-overlapping rectangles covering the dark
// modules.
type Path []Rect

// String returns p as SVG path data.
func (p Path) String() string {
	var b strings.Builder
	for i, r := range p {
		if i != 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "M%d,%dh%dv%dh-%dz", r.X, r.Y, r.W, r.H, r.W)
	}
	return b.String()
}

// A Vector is a resolution independent rendering of a code.
type Vector struct {
	Path   Path        // dark modules, offset by the quiet zone
	Side   int         // side of the view box in modules
	FG, BG color.Color // dark and light colours
}

// Vector returns the code as horizontal runs of dark modules with
// border modules of quiet zone on each side.
func (c *Code) Vector(border int, fg, bg color.Color) (*Vector, error) {
	if fg == nil || bg == nil {
		return nil, ErrArgs
	}
	side, err := c.side(border, 1)
	if err != nil {
		return nil, err
	}
	v := &Vector{Side: side, FG: fg, BG: bg}
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; {
			if !c.Black(x, y) {
				x++
				continue
			}
			start := x
			for x < c.Size && c.Black(x, y) {
				x++
			}
			v.Path = append(v.Path, Rect{start + border, y + border, x - start, 1})
		}
	}
	return v, nil
}

func paint(attr string, c color.Color) string {
	p, o := colour.SVG(c)
	s := attr + `="` + p + `"`
	if o < 1 {
		s += " " + attr + `-opacity="` + strconv.FormatFloat(o, 'g', 3, 64) + `"`
	}
	return s
}

// SVG returns an SVG 1.1 document drawing v.
func (v *Vector) SVG() string {
	n := strconv.Itoa(v.Side)
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<svg xmlns="http://www.w3.org/2000/svg" version="1.1" viewBox="0 0 ` + n + " " + n + `" stroke="none">
	<rect width="100%" height="100%" ` + paint("fill", v.BG) + `/>
	<path d="` + v.Path.String() + `" ` + paint("fill", v.FG) + `/>
</svg>
`
}

// Rasterize draws v at scale pixels per module.  The result equals
// Raster with the same arguments.
func (v *Vector) Rasterize(scale int) (*image.Paletted, error) {
	if scale < 1 {
		return nil, ErrArgs
	}
	if v.Side > maxSide/scale {
		return nil, ErrLargeImage
	}
	side := v.Side * scale
	if err := checkArea(side); err != nil {
		return nil, err
	}
	z := vector.NewRasterizer(side, side)
	s := float32(scale)
	for _, r := range v.Path {
		x0, y0 := float32(r.X)*s, float32(r.Y)*s
		x1, y1 := float32(r.X+r.W)*s, float32(r.Y+r.H)*s
		z.MoveTo(x0, y0)
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, side, side))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	img := image.NewPaletted(mask.Rect, color.Palette{v.BG, v.FG})
	for i, a := range mask.Pix {
		if a >= 0x80 {
			img.Pix[i] = 1
		}
	}
	return img, nil
}
