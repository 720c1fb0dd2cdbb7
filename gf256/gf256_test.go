// Copyright 2010 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rscgf "rsc.io/qr/gf256"
)

var f = NewField(0x11d, 2) // x^8 + x^4 + x^3 + x^2 + 1

func TestFieldBasic(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(byte(1), f.Exp(0))
	assert.Equal(byte(2), f.Exp(1))
	assert.Equal(byte(0x1d), f.Exp(8))
	assert.Equal(byte(1), f.Exp(255))
	assert.Equal(-1, f.Log(0))
	assert.Equal(byte(0), f.Inv(0))
	assert.Equal(byte(0), f.Mul(0, 17))
	assert.Equal(byte(3), f.Add(1, 2))
	for x := 1; x < 256; x++ {
		assert.Equal(byte(1), f.Mul(byte(x), f.Inv(byte(x))), "x=%d", x)
		assert.Equal(byte(x), f.Exp(f.Log(byte(x))), "x=%d", x)
	}
}

func TestFieldMatchesReference(t *testing.T) {
	rf := rscgf.NewField(0x11d, 2)
	for x := 0; x < 256; x++ {
		for y := 0; y < 256; y += 7 {
			if got, want := f.Mul(byte(x), byte(y)), rf.Mul(byte(x), byte(y)); got != want {
				t.Fatalf("Mul(%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestInvalidField(t *testing.T) {
	assert.Panics(t, func() { NewField(0x11b, 2) }, "generator 2 is not primitive for 0x11b")
	assert.Panics(t, func() { NewField(0x100, 2) }, "reducible")
	assert.Panics(t, func() { NewField(0xff, 2) }, "degree 7")
	assert.NotPanics(t, func() { NewField(0x11b, 3) })
}

func TestGen(t *testing.T) {
	// x^2 + 3x + 2 = (x - 1)(x - 2)
	assert.Equal(t, []byte{1, 3, 2}, f.Gen(2))
	for c := 1; c < 40; c++ {
		g := f.Gen(c)
		require.Len(t, g, c+1)
		// every α^i, i < c, is a root
		for i := 0; i < c; i++ {
			var v byte
			a := f.Exp(i)
			for _, coef := range g {
				v = f.Mul(v, a) ^ coef
			}
			require.Zero(t, v, "c=%d root α^%d", c, i)
		}
	}
}

func TestECC(t *testing.T) {
	// Version 1-M "HELLO WORLD".
	data := []byte{32, 91, 11, 120, 209, 114, 220, 77, 67, 64, 236, 17, 236, 17, 236, 17}
	want := []byte{196, 35, 39, 119, 235, 215, 231, 226, 93, 23}
	check := make([]byte, 10)
	NewRSEncoder(f, 10).ECC(data, check)
	assert.Equal(t, want, check)
}

func TestECCMatchesReference(t *testing.T) {
	rf := rscgf.NewField(0x11d, 2)
	rnd := rand.New(rand.NewSource(1))
	for _, c := range []int{7, 10, 13, 17, 18, 22, 26, 28, 30} {
		rs, rrs := NewRSEncoder(f, c), rscgf.NewRSEncoder(rf, c)
		for n := 1; n < 130; n += 11 {
			data := make([]byte, n)
			rnd.Read(data)
			got, want := make([]byte, c), make([]byte, c)
			rs.ECC(data, got)
			rrs.ECC(data, want)
			require.Equal(t, want, got, "c=%d n=%d", c, n)
		}
	}
}

func TestECCConcurrent(t *testing.T) {
	rs := NewRSEncoder(f, 26)
	data := []byte("concurrent reed-solomon data block")
	want := make([]byte, 26)
	rs.ECC(data, want)
	done := make(chan []byte)
	for i := 0; i < 8; i++ {
		go func() {
			check := make([]byte, 26)
			for j := 0; j < 100; j++ {
				rs.ECC(data, check)
			}
			done <- check
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}

func BenchmarkECC(b *testing.B) {
	rs := NewRSEncoder(f, 30)
	data := make([]byte, 118)
	check := make([]byte, 30)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		rs.ECC(data, check)
	}
}
