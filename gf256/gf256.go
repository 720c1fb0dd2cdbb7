// Copyright 2010 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gf256 implements arithmetic over the Galois Field GF(256)
// and Reed-Solomon error correction coding.
package gf256 // import "github.com/qrelement/qr/gf256"

import "strconv"

// A Field represents an instance of GF(256) defined by a specific
// polynomial.
type Field struct {
	log [256]byte // log[0] is unused
	exp [510]byte // exp[i] == exp[i+255]
}

// NewField returns a new field corresponding to the polynomial poly
// and generator α.  QR codes use polynomial 0x11d with generator 2.
// NewField panics if poly is not an irreducible polynomial of degree 8
// or α does not generate the multiplicative group.
func NewField(poly, α int) *Field {
	if poly < 0x100 || poly >= 0x200 || reducible(poly) {
		panic("gf256: invalid polynomial: " + strconv.Itoa(poly))
	}
	var f Field
	x := 1
	for i := 0; i < 255; i++ {
		if x == 1 && i != 0 {
			panic("gf256: invalid generator " + strconv.Itoa(α) +
				" for polynomial " + strconv.Itoa(poly))
		}
		f.exp[i] = byte(x)
		f.exp[i+255] = byte(x)
		f.log[x] = byte(i)
		x = mul(x, α, poly)
	}
	f.log[0] = 255
	return &f
}

// degree returns the degree of the polynomial p, or -1 for p == 0.
func degree(p int) int {
	d := -1
	for ; p != 0; p >>= 1 {
		d++
	}
	return d
}

// polyMod returns the remainder of p divided by q over GF(2).
func polyMod(p, q int) int {
	dq := degree(q)
	for dp := degree(p); dp >= dq; dp = degree(p) {
		p ^= q << (dp - dq)
	}
	return p
}

// reducible reports whether p has a factor of degree 1 to 4.
func reducible(p int) bool {
	for q := 2; q < 1<<5; q++ {
		if polyMod(p, q) == 0 {
			return true
		}
	}
	return false
}

// mul returns x*y mod poly, computed bit by bit.
func mul(x, y, poly int) int {
	z := 0
	for ; x > 0; x >>= 1 {
		if x&1 != 0 {
			z ^= y
		}
		if y <<= 1; y&0x100 != 0 {
			y ^= poly
		}
	}
	return z
}

// Add returns the sum of x and y in the field.
func (f *Field) Add(x, y byte) byte { return x ^ y }

// Exp returns the base-α exponential of e in the field.
// If e < 0, Exp returns 0.
func (f *Field) Exp(e int) byte {
	if e < 0 {
		return 0
	}
	return f.exp[e%255]
}

// Log returns the base-α logarithm of x in the field.
// If x == 0, Log returns -1.
func (f *Field) Log(x byte) int {
	if x == 0 {
		return -1
	}
	return int(f.log[x])
}

// Inv returns the multiplicative inverse of x in the field.
// If x == 0, Inv returns 0.
func (f *Field) Inv(x byte) byte {
	if x == 0 {
		return 0
	}
	return f.exp[255-f.log[x]]
}

// Mul returns the product of x and y in the field.
func (f *Field) Mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[int(f.log[x])+int(f.log[y])]
}

// An RSEncoder computes Reed-Solomon check bytes for a fixed number of
// check bytes.  An RSEncoder holds no per-call state and can be used
// from multiple goroutines.
type RSEncoder struct {
	f   *Field
	c   int
	gen []byte // generator polynomial without the leading 1
}

// NewRSEncoder returns an RSEncoder producing c check bytes using
// the generator polynomial (x-α⁰)(x-α¹)…(x-α^(c-1)).
func NewRSEncoder(f *Field, c int) *RSEncoder {
	if c < 1 || c > 254 {
		panic("gf256: invalid check byte count: " + strconv.Itoa(c))
	}
	return &RSEncoder{f: f, c: c, gen: f.Gen(c)[1:]}
}

// Gen returns the coefficients of the Reed-Solomon generator
// polynomial of degree c, highest degree first.  The first
// coefficient is always 1.
func (f *Field) Gen(c int) []byte {
	g := make([]byte, 1, c+1)
	g[0] = 1
	for i := 0; i < c; i++ {
		a := f.Exp(i)
		g = append(g, 0)
		for j := len(g) - 1; j > 0; j-- {
			g[j] ^= f.Mul(g[j-1], a)
		}
	}
	return g
}

// Check returns the number of check bytes produced by rs.
func (rs *RSEncoder) Check() int { return rs.c }

// ECC writes to check the error correction bytes for data.
// check must be at least rs.Check() bytes long; only the first
// rs.Check() bytes are written.
func (rs *RSEncoder) ECC(data, check []byte) {
	if len(check) < rs.c {
		panic("gf256: invalid check byte length")
	}
	rem := check[:rs.c]
	clear(rem)
	for _, d := range data {
		factor := d ^ rem[0]
		copy(rem, rem[1:])
		rem[len(rem)-1] = 0
		if factor == 0 {
			continue
		}
		for j, g := range rs.gen {
			rem[j] ^= rs.f.Mul(g, factor)
		}
	}
}
