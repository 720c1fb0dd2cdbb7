// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(c *Code) []string {
	r := make([]string, c.Size)
	for y := range r {
		var sb strings.Builder
		for x := 0; x < c.Size; x++ {
			if c.Black(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		r[y] = sb.String()
	}
	return r
}

func helloWorld(t testing.TB) Segment {
	seg, err := MakeAlphanumeric("HELLO WORLD")
	require.NoError(t, err)
	return seg
}

var helloWorldL = []string{
	"#######...#.#.#######",
	"#.....#.#.#.#.#.....#",
	"#.###.#.#.##..#.###.#",
	"#.###.#.....#.#.###.#",
	"#.###.#.#####.#.###.#",
	"#.....#.###...#.....#",
	"#######.#.#.#.#######",
	"........#............",
	"##.#..##..###.###.##.",
	"###.##..#.##....#...#",
	"#.#...#..#.#.##..#.#.",
	"#.####.###..####..###",
	"...#####.###..###.#.#",
	"........#....##.#.###",
	"#######.#..##.##..#.#",
	"#.....#...#...##.#...",
	"#.###.#..##.####.##.#",
	"#.###.#.#.#..###.#.##",
	"#.###.#...##.###.#..#",
	"#.....#.#.###...##..#",
	"#######.#.#..#.#.#...",
}

var helloWorldQ = []string{
	"#######.##....#######",
	"#.....#.#..#..#.....#",
	"#.###.#.#..##.#.###.#",
	"#.###.#.#.....#.###.#",
	"#.###.#.#.#...#.###.#",
	"#.....#...#...#.....#",
	"#######.#.#.#.#######",
	"........#............",
	".##.#.##....#.#.#####",
	".#......####....#...#",
	"..##.###.##...#.##...",
	".##.##.#..##.#.#.###.",
	"#...#.#.#.###.###.#.#",
	"........##.#..#...#.#",
	"#######.#.#....#.##..",
	"#.....#..#.##.##.#...",
	"#.###.#.#.#...#######",
	"#.###.#..#.#.#.#...#.",
	"#.###.#.#..#.###.#..#",
	"#.....#.#.####...#.##",
	"#######....#.###....#",
}

func TestHelloWorldL(t *testing.T) {
	seg := helloWorld(t)

	var b Bits
	require.NoError(t, seg.Encode(&b, 1))
	assert.Equal(t, []byte{
		32, 91, 11, 120, 209, 114, 220, 77, 67, 64, 236, 17, 236, 17,
		236, 17, 236, 17, 236, 209, 239, 196, 207, 78, 195, 109,
	}, b.Codewords(1, L))

	pen, err := Penalties(1, L, seg)
	require.NoError(t, err)
	assert.Equal(t, [8]int{1069, 1134, 1123, 1151, 1151, 1298, 1173, 1030}, pen)

	c, err := Encode(1, L, AutoMask, seg)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Mask)
	assert.Equal(t, 21, c.Size)
	assert.Equal(t, 3, c.Stride)
	assert.Equal(t, helloWorldL, rows(c))
	assert.Equal(t, 1030, c.Penalty())
}

func TestHelloWorldQ(t *testing.T) {
	seg := helloWorld(t)
	pen, err := Penalties(1, Q, seg)
	require.NoError(t, err)
	assert.Equal(t, [8]int{1067, 1230, 1266, 1161, 1339, 1276, 1074, 1278}, pen)

	c, err := Encode(1, Q, AutoMask, seg)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Mask)
	assert.Equal(t, Q, c.Level)
	assert.Equal(t, helloWorldQ, rows(c))
}

func TestNumericCodewords(t *testing.T) {
	seg, err := MakeNumeric("01234567")
	require.NoError(t, err)
	var b Bits
	require.NoError(t, seg.Encode(&b, 1))
	assert.Equal(t, []byte{
		16, 32, 12, 86, 97, 128, 236, 17, 236, 17, 236, 17, 236, 17, 236, 17,
		165, 36, 212, 193, 237, 54, 199, 135, 44, 85,
	}, b.Codewords(1, M))

	c, err := Encode(1, M, AutoMask, seg)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Mask)
}

func TestMaskSelection(t *testing.T) {
	segs := []Segment{helloWorld(t)}
	num, err := MakeNumeric("3141592653589793238462643383279")
	require.NoError(t, err)
	segs = append(segs, num, MakeBytes([]byte("mask selection")))
	for _, v := range []Version{2, 3, 7, 10, 27} {
		for l := L; l <= H; l++ {
			pen, err := Penalties(v, l, segs...)
			if TotalBits(segs, v) > v.DataBits(l) {
				var e *DataTooLongError
				require.ErrorAs(t, err, &e)
				continue
			}
			require.NoError(t, err)
			best := 0
			for m, p := range pen {
				if p < pen[best] {
					best = m
				}
			}
			c, err := Encode(v, l, AutoMask, segs...)
			require.NoError(t, err)
			assert.Equal(t, best, c.Mask, "%d-%v", v, l)
			assert.Equal(t, pen[best], c.Penalty())

			// each fixed mask yields the code scored above
			for m := range pen {
				fc, err := Encode(v, l, FixedMask(m), segs...)
				require.NoError(t, err)
				assert.Equal(t, m, fc.Mask)
				assert.Equal(t, pen[m], fc.Penalty(), "%d-%v mask %d", v, l, m)
				if m == best {
					assert.Equal(t, c.Bitmap, fc.Bitmap)
				}
			}
		}
	}
}

func TestFixedMask(t *testing.T) {
	c, err := Encode(1, M, FixedMask(3), helloWorld(t))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Mask)
	_, err = Encode(1, M, FixedMask(9), helloWorld(t))
	assert.ErrorIs(t, err, ErrMask)
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(0, M, AutoMask)
	assert.ErrorIs(t, err, ErrVersion)
	_, err = Encode(41, M, AutoMask)
	assert.ErrorIs(t, err, ErrVersion)
	_, err = Encode(1, Level(4), AutoMask)
	assert.ErrorIs(t, err, ErrLevel)

	// 41 digits fill 1-L exactly, 42 do not fit
	seg, err := MakeNumeric(strings.Repeat("7", 41))
	require.NoError(t, err)
	_, err = Encode(1, L, AutoMask, seg)
	require.NoError(t, err)
	seg, err = MakeNumeric(strings.Repeat("7", 42))
	require.NoError(t, err)
	_, err = Encode(1, L, AutoMask, seg)
	var e *DataTooLongError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, DataTooLongError{Bits: 154, Capacity: 152, Level: L, MaxVersion: 1}, *e)
	assert.EqualError(t, e, "qr: cannot encode 154 bits into 152-bit code (version 1-L)")

	// byte count overflow
	_, err = Encode(9, L, AutoMask, MakeBytes(make([]byte, 256)))
	var se *SegmentError
	assert.ErrorAs(t, err, &se)
}

func TestEncoderReuse(t *testing.T) {
	e, err := NewEncoder(2, H)
	require.NoError(t, err)
	require.NoError(t, e.Write(helloWorld(t)))
	c1, err := e.Code(AutoMask)
	require.NoError(t, err)
	c2, err := e.Code(AutoMask)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	e.Reset()
	assert.Equal(t, 0, e.Bits())
	c3, err := e.Encode(AutoMask, helloWorld(t))
	require.NoError(t, err)
	assert.Equal(t, c1.Bitmap, c3.Bitmap)
}

func TestEmptyCode(t *testing.T) {
	c, err := Encode(1, M, AutoMask)
	require.NoError(t, err)
	assert.Equal(t, 21, c.Size)
	assert.Equal(t, MinVersion, c.Version)
}

// TestPlans checks all version and level combinations: function
// modules match the geometry, data modules are placed exactly once,
// and function modules outside the format areas do not depend on the
// mask.
func TestPlans(t *testing.T) {
	for v := MinVersion; v <= MaxVersion; v++ {
		for l := L; l <= H; l++ {
			p, err := NewPlan(v, l)
			require.NoError(t, err)
			siz := v.Size()
			assert.Equal(t, uint(siz*siz-rawModules(v)), p.Map.Count(), "%d-%v", v, l)

			// all ones: every data module is written once
			data := make([]byte, p.Size*p.Stride)
			all := bytes.Repeat([]byte{0xff}, v.Codewords())
			p.Serialise(NewBitStream(all), data)
			n := 0
			for y := 0; y < siz; y++ {
				for x := 0; x < siz; x++ {
					fn := p.Map.Test(uint(y*siz + x))
					dark := data[y*p.Stride+x>>3]&(0x80>>(x&7)) != 0
					if dark {
						n++
						if fn {
							t.Fatalf("%d-%v: data at function module (%d,%d)", v, l, x, y)
						}
					}
				}
			}
			assert.Equal(t, v.Codewords()*8, n, "%d-%v", v, l)

			// Pattern keeps function modules regardless of mask
			for m := 1; m < 8; m++ {
				for i := uint(0); i < uint(siz*siz); i++ {
					if !p.Map.Test(i) {
						continue
					}
					x, y := int(i)%siz, int(i)/siz
					if isFormat(x, y, siz) {
						continue
					}
					off, b := y*p.Stride+x>>3, byte(0x80)>>(x&7)
					if p.Pattern[0][off]&b != p.Pattern[m][off]&b {
						t.Fatalf("%d-%v mask %d: function module (%d,%d) differs", v, l, m, x, y)
					}
				}
			}
		}
	}
}

func isFormat(x, y, siz int) bool {
	return y == 8 && (x <= 8 || x >= siz-8) || x == 8 && (y <= 8 || y >= siz-7)
}

func TestPlanShared(t *testing.T) {
	p1, err := NewPlan(5, Q)
	require.NoError(t, err)
	p2, err := NewPlan(5, Q)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestSerialiseMismatch(t *testing.T) {
	p, err := NewPlan(1, L)
	require.NoError(t, err)
	data := make([]byte, p.Size*p.Stride)
	assert.PanicsWithValue(t, InternalError("module placement mismatch"), func() {
		p.Serialise(NewBitStream(make([]byte, 10)), data)
	})
}

func TestConcurrentEncode(t *testing.T) {
	segs := []Segment{helloWorld(t), MakeBytes([]byte("concurrency"))}
	want, err := Encode(12, M, AutoMask, segs...)
	require.NoError(t, err)
	var wg sync.WaitGroup
	codes := make([]*Code, 16)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _ = Encode(12, M, AutoMask, segs...)
		}(i)
	}
	wg.Wait()
	for _, c := range codes {
		require.NotNil(t, c)
		assert.Equal(t, want.Bitmap, c.Bitmap)
		assert.Equal(t, want.Mask, c.Mask)
	}
}

func BenchmarkEncode(b *testing.B) {
	seg := MakeBytes(bytes.Repeat([]byte("benchmark "), 100))
	for i := 0; i < b.N; i++ {
		if _, err := Encode(25, M, AutoMask, seg); err != nil {
			b.Fatal(err)
		}
	}
}
