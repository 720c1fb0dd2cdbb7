// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr_test

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrelement/qr"
)

var (
	fg = color.NRGBA{0x10, 0x20, 0x80, 0xff}
	bg = color.NRGBA{0xff, 0xff, 0xf0, 0xff}
)

func mustEncode(t testing.TB, text string) *qr.Code {
	c, err := qr.Encode(text, qr.M, qr.Options{})
	require.NoError(t, err)
	return c
}

// module reports whether the image pixel (x, y) lies on a dark module.
func module(c *qr.Code, border, scale, x, y int) bool {
	return c.Black(x/scale-border, y/scale-border)
}

func TestRaster(t *testing.T) {
	c := mustEncode(t, "raster test")
	for _, tt := range []struct{ border, scale int }{
		{0, 1}, {1, 1}, {4, 1}, {1, 10}, {2, 3}, {4, 8},
	} {
		img, err := c.Raster(tt.border, tt.scale, fg, bg)
		require.NoError(t, err)
		side := (c.Size + 2*tt.border) * tt.scale
		assert.Equal(t, image.Rect(0, 0, side, side), img.Bounds())
		assert.Equal(t, color.Palette{bg, fg}, img.Palette)
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				want := uint8(0)
				if module(c, tt.border, tt.scale, x, y) {
					want = 1
				}
				if img.ColorIndexAt(x, y) != want {
					t.Fatalf("border %d scale %d: pixel (%d,%d) = %d",
						tt.border, tt.scale, x, y, img.ColorIndexAt(x, y))
				}
			}
		}
	}
}

func TestRasterArgs(t *testing.T) {
	c := mustEncode(t, "x")
	for _, tt := range []struct {
		border, scale int
		err           error
	}{
		{-1, 1, qr.ErrArgs},
		{0, 0, qr.ErrArgs},
		{0, -3, qr.ErrArgs},
		{0, 32767 * 8, qr.ErrLargeImage},
		{1 << 20, 1, qr.ErrLargeImage},
		{13000, 10, qr.ErrLargeImage}, // sides fit, area does not
		{1000, 40, qr.ErrLargeImage},
	} {
		_, err := c.Raster(tt.border, tt.scale, fg, bg)
		assert.ErrorIs(t, err, tt.err, "border %d scale %d", tt.border, tt.scale)
	}
	_, err := c.Raster(1, 1, nil, bg)
	assert.ErrorIs(t, err, qr.ErrArgs)
	_, err = (&qr.Code{}).Raster(1, 1, fg, bg)
	assert.ErrorIs(t, err, qr.ErrArgs)
}

func TestVector(t *testing.T) {
	c := mustEncode(t, "vector test")
	v, err := c.Vector(2, fg, bg)
	require.NoError(t, err)
	assert.Equal(t, c.Size+4, v.Side)

	// the rectangles cover exactly the dark modules
	dark := 0
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			if c.Black(x, y) {
				dark++
			}
		}
	}
	area := 0
	for _, r := range v.Path {
		assert.Equal(t, 1, r.H)
		for x := r.X; x < r.X+r.W; x++ {
			assert.True(t, c.Black(x-2, r.Y-2))
		}
		assert.False(t, c.Black(r.X-3, r.Y-2), "run not maximal")
		assert.False(t, c.Black(r.X+r.W-2, r.Y-2), "run not maximal")
		area += r.W
	}
	assert.Equal(t, dark, area)

	for _, scale := range []int{1, 3, 10} {
		want, err := c.Raster(2, scale, fg, bg)
		require.NoError(t, err)
		got, err := v.Rasterize(scale)
		require.NoError(t, err)
		assert.Equal(t, want, got, "scale %d", scale)
	}
	_, err = v.Rasterize(0)
	assert.ErrorIs(t, err, qr.ErrArgs)
	_, err = v.Rasterize(1000)
	assert.ErrorIs(t, err, qr.ErrLargeImage)
}

func TestPathString(t *testing.T) {
	p := qr.Path{{1, 1, 7, 1}, {10, 2, 1, 1}}
	assert.Equal(t, "M1,1h7v1h-7z M10,2h1v1h-1z", p.String())
	assert.Equal(t, "", qr.Path(nil).String())
}

func TestSVG(t *testing.T) {
	c := mustEncode(t, "svg")
	v, err := c.Vector(1, color.Black, color.NRGBA{0xff, 0xff, 0xff, 0x80})
	require.NoError(t, err)
	svg := v.SVG()
	n := c.Size + 2
	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, svg, fmt.Sprintf(`viewBox="0 0 %d %d"`, n, n))
	assert.Contains(t, svg, `<rect width="100%" height="100%" fill="#ffffff" fill-opacity="0.502"/>`)
	assert.Contains(t, svg, `<path d="`+v.Path.String()+`" fill="#000000"/>`)
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

// readPBM decodes a P4 image into rows of booleans.
func readPBM(t *testing.T, r io.Reader) [][]bool {
	br := bufio.NewReader(r)
	var w, h int
	_, err := fmt.Fscanf(br, "P4\n%d %d\n", &w, &h)
	require.NoError(t, err)
	require.Equal(t, w, h)
	rows := make([][]bool, h)
	line := make([]byte, (w+7)/8)
	for y := range rows {
		_, err := io.ReadFull(br, line)
		require.NoError(t, err)
		rows[y] = make([]bool, w)
		for x := range rows[y] {
			rows[y][x] = line[x/8]&(0x80>>(x%8)) != 0
		}
	}
	_, err = br.ReadByte()
	assert.Equal(t, io.EOF, err)
	return rows
}

func TestPBM(t *testing.T) {
	for _, text := range []string{"pbm", strings.Repeat("PBM 12345 ", 20)} {
		c := mustEncode(t, text)
		for _, border := range []int{0, 1, 3, 4} {
			for _, scale := range []int{1, 2, 3, 4, 5, 8, 9} {
				for _, reverse := range []bool{false, true} {
					var b bytes.Buffer
					require.NoError(t, c.EncodePBM(&b, border, scale, reverse))
					rows := readPBM(t, &b)
					require.Len(t, rows, (c.Size+2*border)*scale)
					for y, row := range rows {
						for x, p := range row {
							if p != (module(c, border, scale, x, y) != reverse) {
								t.Fatalf("v%d border %d scale %d reverse %v: pixel (%d,%d)",
									c.Version, border, scale, reverse, x, y)
							}
						}
					}
				}
			}
		}
	}
	var b bytes.Buffer
	assert.ErrorIs(t, mustEncode(t, "x").EncodePBM(&b, 0, 0, false), qr.ErrArgs)
}

func TestText(t *testing.T) {
	c := mustEncode(t, "text")
	s := c.String()
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	side := c.Size + 8
	require.Len(t, lines, (side+1)/2)
	for _, l := range lines {
		assert.Equal(t, side, len([]rune(l)))
	}
	// quiet zone, then the first two rows of the finder
	assert.Equal(t, strings.Repeat(" ", side), lines[0])
	assert.Equal(t, strings.Repeat(" ", side), lines[1])
	assert.Equal(t, "█▀▀▀▀▀█", string([]rune(lines[2])[4:11]))

	var b bytes.Buffer
	require.NoError(t, c.UTF8(&b, 0, true))
	assert.True(t, strings.HasPrefix(b.String(), " ▄▄▄▄▄ "), "%q", b.String())

	b.Reset()
	require.NoError(t, c.ASCII(&b, 1, false))
	lines = strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, c.Size+2)
	assert.Equal(t, strings.Repeat(" ", 2*(c.Size+2)), lines[0])
	assert.Equal(t, "  ##############  ", lines[1][:18])

	b.Reset()
	require.NoError(t, c.ASCII(&b, 0, true))
	assert.True(t, strings.HasPrefix(b.String(), strings.Repeat(" ", 14)+"##"))
	assert.ErrorIs(t, c.ASCII(&b, -1, false), qr.ErrArgs)
}

func TestImage(t *testing.T) {
	c := mustEncode(t, "image") // version 1
	img, err := c.Image(1, 100, fg, bg)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.Equal(t, color.NRGBAModel.Convert(bg), color.NRGBAModel.Convert(img.At(0, 0)))
	// finder centre
	assert.Equal(t, color.NRGBAModel.Convert(fg), color.NRGBAModel.Convert(img.At(19, 19)))

	// exact multiple: no resampling
	img, err = c.Image(1, 92, fg, bg)
	require.NoError(t, err)
	assert.IsType(t, &image.Paletted{}, img)

	_, err = c.Image(1, 22, fg, bg)
	assert.ErrorIs(t, err, qr.ErrArgs)
	_, err = qr.Fit(img, 0)
	assert.ErrorIs(t, err, qr.ErrArgs)
	_, err = qr.Fit(img, 9000)
	assert.ErrorIs(t, err, qr.ErrLargeImage)
	_, err = c.Image(1, 9000, fg, bg)
	assert.ErrorIs(t, err, qr.ErrLargeImage)
}

func TestEncodeImage(t *testing.T) {
	c := mustEncode(t, "encode image")
	img, err := c.Raster(4, 4, color.Black, color.White)
	require.NoError(t, err)
	for _, name := range []string{"png", "gif", "bmp", "tiff", "jpg"} {
		f, err := qr.ParseImageFormat(name)
		require.NoError(t, err)
		var b bytes.Buffer
		require.NoError(t, qr.EncodeImage(&b, img, f), name)
		dec, err := imaging.Decode(&b)
		require.NoError(t, err, name)
		assert.Equal(t, img.Bounds(), dec.Bounds(), name)
		if f == qr.JPEG {
			continue
		}
		for y := 0; y < img.Bounds().Dy(); y += 3 {
			for x := 0; x < img.Bounds().Dx(); x += 3 {
				r, _, _, _ := dec.At(x, y).RGBA()
				if (r == 0) != (img.ColorIndexAt(x, y) == 1) {
					t.Fatalf("%s: pixel (%d,%d)", name, x, y)
				}
			}
		}
	}
	_, err = qr.ParseImageFormat("webp")
	assert.Error(t, err)
}

func BenchmarkRaster(b *testing.B) {
	c := mustEncode(b, strings.Repeat("benchmark ", 50))
	for i := 0; i < b.N; i++ {
		if _, err := c.Raster(4, 8, fg, bg); err != nil {
			b.Fatal(err)
		}
	}
}
