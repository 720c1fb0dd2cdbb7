// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"math"
)

// A Code is a square module grid.  Codes are not modified after
// encoding.
type Code struct {
	Version Version // QR version
	Level   Level   // error correction level
	Mask    int     // mask pattern
	Bitmap  []byte  // 1 is dark, 0 is light
	Size    int     // number of modules on a side
	Stride  int     // number of bytes per row
}

// Black reports whether the module at (x, y) is dark.  Modules outside
// the code are light.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x>>3]&(0x80>>(x&7)) != 0
}

// DataTooLongError reports data that does not fit in any version
// allowed.
type DataTooLongError struct {
	Bits       int     // bits needed at MaxVersion, -1 if uncountable
	Capacity   int     // data bits available at MaxVersion
	Level      Level   // error correction level
	MaxVersion Version // largest version tried
}

func (e *DataTooLongError) Error() string {
	if e.Bits < 0 {
		return fmt.Sprintf("qr: data too long for version %v-%v",
			e.MaxVersion, e.Level)
	}
	return fmt.Sprintf("qr: cannot encode %d bits into %d-bit code (version %v-%v)",
		e.Bits, e.Capacity, e.MaxVersion, e.Level)
}

// Encoder encodes a QR code of a fixed version and level.
type Encoder struct {
	p *Plan
	b *Bits
}

// NewEncoder returns an Encoder for the given version and level.
func NewEncoder(version Version, level Level) (*Encoder, error) {
	p, err := NewPlan(version, level)
	if err != nil {
		return nil, err
	}
	return &Encoder{p: p, b: NewBits(version)}, nil
}

// Write adds segments to e.
func (e *Encoder) Write(segs ...Segment) error {
	for i := range segs {
		if err := segs[i].Encode(e.b, e.p.Version); err != nil {
			return err
		}
	}
	return nil
}

// Reset discards the segments written to e.
func (e *Encoder) Reset() { e.b.Reset() }

// Bits returns the number of data bits written to e.
func (e *Encoder) Bits() int { return e.b.Bits() }

// data returns the unmasked bitmap of data and check bits.
func (e *Encoder) data() ([]byte, error) {
	if e.b.Bits() > e.p.DataBits {
		return nil, &DataTooLongError{
			Bits:       e.b.Bits(),
			Capacity:   e.p.DataBits,
			Level:      e.p.Level,
			MaxVersion: e.p.Version,
		}
	}
	b := e.b.Clone()
	b.AddCheckBytes(e.p.Version, e.p.Level)
	bits := b.Permute(e.p.Version, e.p.Level)
	data := make([]byte, e.p.Size*e.p.Stride)
	e.p.Serialise(bits, data)
	return data, nil
}

// xor xors a and b into dst.  a and b may not be shorter than dst.
func xor(dst, a, b []byte) {
	a = a[:len(dst)]
	b = b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// Code returns a QR code containing the data written to e.  The
// Encoder remains usable.
func (e *Encoder) Code(mask MaskChoice) (*Code, error) {
	if !mask.IsValid() {
		return nil, ErrMask
	}
	data, err := e.data()
	if err != nil {
		return nil, err
	}
	c := &Code{
		Version: e.p.Version,
		Level:   e.p.Level,
		Size:    e.p.Size,
		Stride:  e.p.Stride,
		Bitmap:  make([]byte, len(data)),
	}
	if m, ok := mask.Fixed(); ok {
		xor(c.Bitmap, data, e.p.Pattern[m])
		c.Mask = m
		return c, nil
	}

	// Apply masks to the bitmap to construct the actual codes.
	// Choose the code with the smallest penalty.
	best := make([]byte, len(data)) // best bitmap so far
	pen := math.MaxInt
	for m, v := range e.p.Pattern {
		xor(c.Bitmap, data, v)
		if p := c.Penalty(); p < pen {
			best, pen, c.Bitmap = c.Bitmap, p, best
			c.Mask = m
		}
	}
	c.Bitmap = best
	return c, nil
}

// Penalties returns the penalty of the code containing the data
// written to e for each mask pattern.
func (e *Encoder) Penalties() ([8]int, error) {
	var pen [8]int
	data, err := e.data()
	if err != nil {
		return pen, err
	}
	c := &Code{Size: e.p.Size, Stride: e.p.Stride, Bitmap: make([]byte, len(data))}
	for m, v := range e.p.Pattern {
		xor(c.Bitmap, data, v)
		pen[m] = c.Penalty()
	}
	return pen, nil
}

// Encode is a wrapper around Write and Code.
func (e *Encoder) Encode(mask MaskChoice, segs ...Segment) (*Code, error) {
	if err := e.Write(segs...); err != nil {
		return nil, err
	}
	return e.Code(mask)
}

// Encode encodes segments using an Encoder with the given version and
// level.
func Encode(version Version, level Level, mask MaskChoice, segs ...Segment) (*Code, error) {
	e, err := NewEncoder(version, level)
	if err != nil {
		return nil, err
	}
	return e.Encode(mask, segs...)
}

// Penalties returns the penalty for each mask pattern of the code
// encoding segs at the given version and level.
func Penalties(version Version, level Level, segs ...Segment) ([8]int, error) {
	e, err := NewEncoder(version, level)
	if err != nil {
		return [8]int{}, err
	}
	if err := e.Write(segs...); err != nil {
		return [8]int{}, err
	}
	return e.Penalties()
}
