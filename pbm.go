// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bufio"
	"io"
	"strconv"
)

// EncodePBM writes a Portable Bit Map image of the code to w, for use
// with netpbm, with border modules of quiet zone on each side and scale
// pixels per module.  With reverse, light modules are black.
func (c *Code) EncodePBM(w io.Writer, border, scale int, reverse bool) error {
	length, err := c.side(border, scale)
	if err != nil {
		return err
	}
	b := bufio.NewWriter(w)
	siz := c.Size
	ls := strconv.Itoa(length)
	if _, err := b.WriteString("P4\n" + ls + " " + ls + "\n"); err != nil {
		return err
	}
	row := make([]byte, (length+7)/8)
	var white byte
	if reverse {
		white = 255
		for i := range row {
			row[i] = white
		}
	}
	for i := 0; i < scale*border; i++ {
		if _, err := b.Write(row); err != nil {
			return err
		}
	}
	data := row[scale*border/8 : (scale*(siz+border)+7)/8]
	slen := scale * border & 7
	stride := c.Stride
	for y := 0; y < siz; y++ {
		srow := c.Bitmap[y*stride : (y+1)*stride]
		if scale == 1 && slen|int(white) == 0 {
			copy(data, srow)
		} else {
			pbmRow(data, srow, scale, white, slen)
		}
		for i := 0; i < scale; i++ {
			if _, err := b.Write(row); err != nil {
				return err
			}
		}
	}
	if border != 0 {
		for i := range data {
			data[i] = white
		}
		for i := 0; i < scale*border; i++ {
			if _, err := b.Write(row); err != nil {
				return err
			}
		}
	}
	return b.Flush()
}

// pbmRow encodes a row of QR data pixels in PBM format.
func pbmRow(row, srow []byte, scale int, white byte, slen int) {
	j := 0
	z := white
	if scale == 1 {
		for _, v := range srow {
			row[j] = z ^ v>>slen
			z = v<<(8-slen) ^ white
			j++
		}
		if j < len(row) {
			row[j] = z
		}
	} else {
		nz := slen
		for _, v := range srow {
			v ^= white
			for i := 0; i < 8; i++ {
				bits := byte(int8(v) >> 7)
				v <<= 1
				shift := min(8-nz, scale)
				z = z<<shift | bits>>(8-shift)
				for nz += scale; nz >= 8; nz -= 8 {
					if j >= len(row) {
						return
					}
					row[j] = z
					z = bits
					j++
				}
			}
		}
	}
}
