// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bufio"
	"io"
	"strings"
)

// halfBlocks maps the upper and lower module of a text cell to a
// character, dark modules drawn.  Index bit 0 is upper, bit 1 lower.
var halfBlocks = [2][4]string{
	{" ", "▀", "▄", "█"},
	{"█", "▄", "▀", " "}, // reversed
}

// String returns the code drawn with half block characters, two
// modules per character cell, with a quiet zone of 4 modules.
func (c *Code) String() string {
	var b strings.Builder
	c.UTF8(&b, 4, false)
	return b.String()
}

// UTF8 writes the code to w with half block characters, two modules
// per character cell.  With reverse, light modules are drawn, for
// terminals with a dark background.
func (c *Code) UTF8(w io.Writer, border int, reverse bool) error {
	if _, err := c.side(border, 1); err != nil {
		return err
	}
	blocks := &halfBlocks[0]
	if reverse {
		blocks = &halfBlocks[1]
	}
	b := bufio.NewWriter(w)
	for y := -border; y < c.Size+border; y += 2 {
		for x := -border; x < c.Size+border; x++ {
			i := 0
			if c.Black(x, y) {
				i |= 1
			}
			if y+1 < c.Size+border && c.Black(x, y+1) {
				i |= 2
			}
			b.WriteString(blocks[i])
		}
		b.WriteByte('\n')
	}
	return b.Flush()
}

// ASCII writes the code to w with two characters per module, "##" for
// dark modules and spaces for light ones, or the other way around
// with reverse.
func (c *Code) ASCII(w io.Writer, border int, reverse bool) error {
	side, err := c.side(border, 1)
	if err != nil {
		return err
	}
	var dark, light byte = '#', ' '
	if reverse {
		dark, light = light, dark
	}
	line := make([]byte, side*2+1)
	line[side*2] = '\n'
	b := bufio.NewWriter(w)
	for y := -border; y < c.Size+border; y++ {
		for x := -border; x < c.Size+border; x++ {
			p := light
			if c.Black(x, y) {
				p = dark
			}
			i := (x + border) * 2
			line[i], line[i+1] = p, p
		}
		if _, err := b.Write(line); err != nil {
			return err
		}
	}
	return b.Flush()
}
