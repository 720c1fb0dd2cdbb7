// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Bits is an append-only bit buffer, most significant bit first.
// The zero value is an empty buffer ready to use.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version.
func NewBits(v Version) *Bits {
	return &Bits{b: make([]byte, 0, vtab[v].bytes)}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits in b.
func (b *Bits) Bits() int { return b.nbit }

// Bytes returns the contents of b.  b must hold a whole number of
// bytes.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic(InternalError("fractional byte"))
	}
	return b.b
}

// Bit returns bit i of b as 0 or 1.
func (b *Bits) Bit(i int) byte {
	return b.b[i>>3] >> (7 &^ i) & 1
}

func (b *Bits) growTo(n int) {
	if cap(b.b) < n {
		nb := make([]byte, len(b.b), n)
		copy(nb, b.b)
		b.b = nb
	}
}

// Add adds n zero bytes to b and returns the added slice.
func (b *Bits) Add(n int) []byte {
	if b.nbit%8 != 0 {
		panic(InternalError("fractional byte"))
	}
	b.growTo(len(b.b) + n)
	start := len(b.b)
	b.b = b.b[:start+n]
	clear(b.b[start:])
	b.nbit = 8 * len(b.b)
	return b.b[start:]
}

// Write appends the nbit low bits of v to b, most significant first.
// nbit must be between 0 and 32, and v must fit in nbit bits.
func (b *Bits) Write(v uint32, nbit int) {
	if nbit < 0 || nbit > 32 || nbit < 32 && v>>nbit != 0 {
		panic(InternalError("bit field overflow"))
	}
	if nbit == 0 {
		return
	}
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// Append appends the contents of c to b.
func (b *Bits) Append(c *Bits) {
	n := c.nbit
	if b.nbit&7 == 0 {
		b.b = append(b.b, c.b[:(n+7)>>3]...)
		b.nbit += n
		return
	}
	for _, v := range c.b[:n>>3] {
		b.Write(uint32(v), 8)
	}
	if r := n & 7; r != 0 {
		b.Write(uint32(c.b[n>>3]>>(8-r)), r)
	}
}

// Clone returns a copy of b.
func (b *Bits) Clone() Bits {
	return Bits{b: append([]byte(nil), b.b...), nbit: b.nbit}
}

// PadTo adds up to 4 terminator bits to b, zero bits up to a byte
// boundary and alternating 0xec and 0x11 bytes up to n bits.
// n must be a multiple of 8 not less than b.Bits().
func (b *Bits) PadTo(n int) {
	if n&7 != 0 || b.nbit > n {
		panic(InternalError("bad padding length"))
	}
	b.growTo(n >> 3)
	b.nbit = min(b.nbit+4, n)
	for len(b.b)*8 < b.nbit {
		b.b = append(b.b, 0)
	}
	for pad := byte(0xec); len(b.b) < n>>3; pad ^= 0xec ^ 0x11 {
		b.b = append(b.b, pad)
	}
	b.nbit = n
}
