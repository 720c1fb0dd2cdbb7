// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qrtest decodes QR codes for tests with gozxing, a decoder
// that shares no tables with this module.
package qrtest

import (
	"fmt"
	"image"
	"image/color"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/qrelement/qr/coding"
)

// A Matrix is a square grid of modules.
type Matrix interface {
	Black(x, y int) bool
}

// Result describes a decoded code.
type Result struct {
	Level        coding.Level
	Text         string   // byte segments read as UTF-8 unless an ECI says otherwise
	ByteSegments [][]byte // raw byte mode payloads
}

const (
	quiet = 4 // quiet zone modules
	scale = 3 // pixels per module
)

// Read draws the matrix m of side size and decodes it.
func Read(m Matrix, size int) (*Result, error) {
	side := (size + 2*quiet) * scale
	img := image.NewGray(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			c := color.Gray{0xff}
			if m.Black(x/scale-quiet, y/scale-quiet) {
				c.Y = 0
			}
			img.SetGray(x, y, c)
		}
	}
	return Decode(img)
}

// Decode decodes a code drawn upright on a light background.
func Decode(img image.Image) (*Result, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, err
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_PURE_BARCODE:  true,
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil, fmt.Errorf("qrtest: %w", err)
	}
	md := res.GetResultMetadata()
	r := &Result{Text: res.GetText()}
	name, _ := md[gozxing.ResultMetadataType_ERROR_CORRECTION_LEVEL].(string)
	if r.Level, err = coding.ParseLevel(name); err != nil {
		return nil, fmt.Errorf("qrtest: error correction level %q", name)
	}
	r.ByteSegments, _ = md[gozxing.ResultMetadataType_BYTE_SEGMENTS].([][]byte)
	return r, nil
}
