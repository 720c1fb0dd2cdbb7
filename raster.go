// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"image"
	"image/color"
)

const (
	maxSide   = 32767 * 8 // largest image side in pixels
	maxPixels = 1 << 26   // largest image area in pixels
)

// checkArea reports whether a square image of side pixels may be
// allocated.
func checkArea(side int) error {
	if side > maxPixels/side {
		return ErrLargeImage
	}
	return nil
}

// side returns the image side in pixels for the given quiet zone and
// scale.
func (c *Code) side(border, scale int) (int, error) {
	if c == nil || c.Size == 0 || border < 0 || scale < 1 {
		return 0, ErrArgs
	}
	if border > maxSide || scale > maxSide || (c.Size+2*border)*scale > maxSide {
		return 0, ErrLargeImage
	}
	return (c.Size + 2*border) * scale, nil
}

// Raster returns an image of the code with border modules of quiet
// zone on each side and scale pixels per module.  Palette index 0 is
// bg, index 1 is fg.  Images over 1<<26 pixels yield ErrLargeImage.
func (c *Code) Raster(border, scale int, fg, bg color.Color) (*image.Paletted, error) {
	if fg == nil || bg == nil {
		return nil, ErrArgs
	}
	side, err := c.side(border, scale)
	if err != nil {
		return nil, err
	}
	if err := checkArea(side); err != nil {
		return nil, err
	}
	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{bg, fg})
	off := border * scale
	for y := 0; y < c.Size; y++ {
		start := (off+y*scale)*img.Stride + off
		row := img.Pix[start : start+c.Size*scale]
		for x := 0; x < c.Size; x++ {
			if c.Black(x, y) {
				px := row[x*scale : (x+1)*scale]
				for i := range px {
					px[i] = 1
				}
			}
		}
		for i := 1; i < scale; i++ {
			copy(img.Pix[start+i*img.Stride:], row)
		}
	}
	return img, nil
}
