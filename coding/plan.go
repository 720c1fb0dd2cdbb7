// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// A Plan describes how to construct a QR code
// with a specific version and level.
type Plan struct {
	Version Version // QR code version
	Level   Level   // QR error correction Level

	DataBits int // number of data bits
	Size     int // number of modules on a side
	Stride   int // number of bytes per bitmap row

	// Map has bit y*Size+x set for function modules: finder,
	// separator, timing and alignment patterns, format and version
	// information.
	Map *bitset.BitSet

	// Pattern holds, for each mask, a bitmap with the function
	// patterns, the format information for the level and mask, and
	// the mask applied to all data modules.  XORing it with a
	// bitmap of data bits yields the final code.
	Pattern [8][]byte
}

// Plans are created the first time a combination of version and
// level is used and never modified afterwards.
var plans [MaxVersion + 1][H + 1]struct {
	once sync.Once
	p    *Plan
}

// NewPlan returns a Plan for a QR code with the given version and
// level.  The Plan is shared and must not be modified.
func NewPlan(version Version, level Level) (*Plan, error) {
	if !version.IsValid() {
		return nil, ErrVersion
	}
	if !level.IsValid() {
		return nil, ErrLevel
	}
	p := &plans[version][level]
	p.once.Do(func() { p.p = makePlan(version, level) })
	return p.p, nil
}

// grid is a square bitmap, one bit per module, rows padded to bytes.
type grid struct {
	size   int
	stride int
	bits   []byte
}

func newGrid(size int) grid {
	stride := (size + 7) >> 3
	return grid{size, stride, make([]byte, size*stride)}
}

func (g grid) set(x, y int, dark bool) {
	i, b := y*g.stride+x>>3, byte(0x80)>>(x&7)
	if dark {
		g.bits[i] |= b
	} else {
		g.bits[i] &^= b
	}
}

func (g grid) get(x, y int) bool {
	return g.bits[y*g.stride+x>>3]&(0x80>>(x&7)) != 0
}

// makePlan draws the function patterns for version v and builds the
// mask patterns for level l.
func makePlan(v Version, l Level) *Plan {
	siz := v.Size()
	fn := bitset.New(uint(siz * siz))
	g := newGrid(siz)
	set := func(x, y int, dark bool) {
		fn.Set(uint(y*siz + x))
		g.set(x, y, dark)
	}

	// Timing patterns, partly overwritten by finders.
	for i := 0; i < siz; i++ {
		set(6, i, i&1 == 0)
		set(i, 6, i&1 == 0)
	}

	// Finder patterns with separators.
	for _, c := range [3][2]int{{3, 3}, {siz - 4, 3}, {3, siz - 4}} {
		for dy := -4; dy <= 4; dy++ {
			for dx := -4; dx <= 4; dx++ {
				x, y := c[0]+dx, c[1]+dy
				if 0 <= x && x < siz && 0 <= y && y < siz {
					d := max(abs(dx), abs(dy))
					set(x, y, d != 2 && d != 4)
				}
			}
		}
	}

	// Alignment patterns, except where they would hit finders.
	pos := vtab[v].align
	last := len(pos) - 1
	for i, x := range pos {
		for j, y := range pos {
			if i == 0 && (j == 0 || j == last) || i == last && j == 0 {
				continue
			}
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					set(x+dx, y+dy, max(abs(dx), abs(dy)) != 1)
				}
			}
		}
	}

	// Format information areas, reserved light, and the dark module.
	drawFormat(set, siz, 0)

	// Version information.
	if vb := vtab[v].pattern; vb != 0 {
		for i := 0; i < 18; i++ {
			dark := vb>>i&1 != 0
			a, b := siz-11+i%3, i/3
			set(a, b, dark)
			set(b, a, dark)
		}
	}

	p := &Plan{
		Version:  v,
		Level:    l,
		DataBits: v.DataBits(l),
		Size:     siz,
		Stride:   g.stride,
		Map:      fn,
	}
	for mask := range p.Pattern {
		mg := grid{siz, g.stride, append([]byte(nil), g.bits...)}
		drawFormat(mg.set, siz, ftab[l][mask])
		f := maskFunc[mask]
		for y := 0; y < siz; y++ {
			for x := 0; x < siz; x++ {
				if f(x, y) && !fn.Test(uint(y*siz+x)) {
					mg.set(x, y, true)
				}
			}
		}
		p.Pattern[mask] = mg.bits
	}
	return p
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// drawFormat draws both copies of the 15 format bits fb, least
// significant first, and the dark module at (8, siz-8).
func drawFormat(set func(x, y int, dark bool), siz int, fb uint16) {
	bit := func(i int) bool { return fb>>i&1 != 0 }
	// around the top left finder
	for i := 0; i < 6; i++ {
		set(8, i, bit(i))
	}
	set(8, 7, bit(6))
	set(8, 8, bit(7))
	set(7, 8, bit(8))
	for i := 9; i < 15; i++ {
		set(14-i, 8, bit(i))
	}
	// below the top right and right of the bottom left finder
	for i := 0; i < 8; i++ {
		set(siz-1-i, 8, bit(i))
	}
	for i := 8; i < 15; i++ {
		set(8, siz-15+i, bit(i))
	}
	set(8, siz-8, true)
}

// Serialise writes bits from s to the bitmap in zigzag scan order:
// two-column strips from the right edge leftwards, skipping the
// vertical timing pattern, alternately upwards and downwards, right
// column first, skipping function modules.  Modules past the end of s
// are left light.  The bitmap must be zeroed.
func (p *Plan) Serialise(s BitStream, bitmap []byte) {
	siz, stride := p.Size, p.Stride
	n := 0 // data modules
	for r := siz - 1; r >= 1; r -= 2 {
		right := r
		if right <= 6 {
			right-- // vertical timing strip
		}
		up := (right+1)&2 == 0
		for vert := 0; vert < siz; vert++ {
			y := vert
			if up {
				y = siz - 1 - vert
			}
			for x := right; x >= right-1; x-- {
				if p.Map.Test(uint(y*siz + x)) {
					continue
				}
				n++
				if s.Next() != 0 {
					bitmap[y*stride+x>>3] |= 0x80 >> (x & 7)
				}
			}
		}
	}
	vt := &vtab[p.Version]
	if s.Len() != vt.bytes*8 || n != vt.bytes*8+vt.remainder {
		panic(InternalError("module placement mismatch"))
	}
}
