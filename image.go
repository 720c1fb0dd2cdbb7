// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// An ImageFormat is an image file format.
type ImageFormat = imaging.Format

// Image file formats.
const (
	PNG  = imaging.PNG
	JPEG = imaging.JPEG
	GIF  = imaging.GIF
	BMP  = imaging.BMP
	TIFF = imaging.TIFF
)

// ParseImageFormat returns the image format for a name or file
// extension such as "png" or "jpg".
func ParseImageFormat(name string) (ImageFormat, error) {
	return imaging.FormatFromExtension(name)
}

// EncodeImage writes img to w in the given format.
func EncodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	return imaging.Encode(w, img, format)
}

// Fit resizes img to px by px pixels using nearest neighbour sampling,
// which keeps module edges sharp.
func Fit(img image.Image, px int) (*image.NRGBA, error) {
	if px < 1 {
		return nil, ErrArgs
	}
	if px > maxSide {
		return nil, ErrLargeImage
	}
	if err := checkArea(px); err != nil {
		return nil, err
	}
	return imaging.Resize(img, px, px, imaging.NearestNeighbor), nil
}

// Image returns the code as an image of about px by px pixels with
// border modules of quiet zone: it is rastered at the largest integral
// scale not exceeding px and, unless that hits px exactly, fitted.
func (c *Code) Image(border, px int, fg, bg color.Color) (image.Image, error) {
	side, err := c.side(border, 1)
	if err != nil {
		return nil, err
	}
	if px < side {
		return nil, ErrArgs
	}
	img, err := c.Raster(border, px/side, fg, bg)
	if err != nil {
		return nil, err
	}
	if px%side == 0 {
		return img, nil
	}
	fit, err := Fit(img, px)
	if err != nil {
		return nil, err
	}
	return fit, nil
}
