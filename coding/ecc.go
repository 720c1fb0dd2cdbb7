// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// AddCheckBytes adds terminator, padding and check bytes to b for the
// given QR version and level.  The data codewords are split into
// blocks, the first of which are one codeword shorter than the rest
// when the count does not divide evenly.  The check bytes of each
// block follow the data in block order.
func (b *Bits) AddCheckBytes(v Version, l Level) {
	nb := v.DataBits(l)
	if b.nbit > nb {
		panic(InternalError("too much data"))
	}
	vt := &vtab[v]
	b.growTo(vt.bytes)
	b.PadTo(nb)

	nd := nb >> 3
	lev := vt.level[l]
	db := nd / lev.nblock
	short := (db+1)*lev.nblock - nd
	rs := rsenc[lev.check]
	dat := b.b[:nd]
	for i := 0; i < lev.nblock; i++ {
		if i == short {
			db++
		}
		rs.ECC(dat[:db], b.Add(lev.check))
		dat = dat[db:]
	}
	if len(dat) != 0 || len(b.b) != vt.bytes {
		panic(InternalError("codeword count mismatch"))
	}
}

// interleave interleaves nblock blocks from src to dst, which must be
// of equal length.  Blocks are contiguous in src, the short ones
// first.
func interleave(dst, src []byte, nblock int) {
	db := len(src) / nblock
	extra := dst[db*nblock:]
	dst = dst[:db*nblock]
	short := nblock - len(extra)
	for i := 0; i < nblock; i++ {
		for j, v := range src[:db] {
			dst[j*nblock+i] = v
		}
		src = src[db:]
		if i >= short {
			extra[i-short] = src[0]
			src = src[1:]
		}
	}
}

// Permute returns a BitStream reading data and check bits in b with
// blocks interleaved for the given QR code version and level.
// b must have been completed by AddCheckBytes.
func (b *Bits) Permute(v Version, l Level) BitStream {
	src := b.Bytes()
	vt := &vtab[v]
	if len(src) != vt.bytes {
		panic(InternalError("wrong data length"))
	}
	nblock := vt.level[l].nblock
	if nblock == 1 {
		return NewBitStream(src)
	}
	dst := make([]byte, len(src))
	nd := v.DataBytes(l)
	interleave(dst[:nd], src[:nd], nblock)
	interleave(dst[nd:], src[nd:], nblock)
	return NewBitStream(dst)
}

// Codewords returns the final codeword sequence for the data segments
// in b: padded, with check bytes added and blocks interleaved.
// b is modified.
func (b *Bits) Codewords(v Version, l Level) []byte {
	b.AddCheckBytes(v, l)
	s := b.Permute(v, l)
	return s.Bytes()
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Bytes returns the data underlying s.
func (s *BitStream) Bytes() []byte { return s.b }

// Len returns the number of bits read from s.
func (s *BitStream) Len() int { return s.pos }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0 without advancing.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}
