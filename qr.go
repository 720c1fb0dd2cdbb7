// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qr encodes QR codes.

Encode splits text into numeric, alphanumeric, byte and kanji mode
segments, picks the smallest version holding them at the requested
error correction level, and returns a Code.  A Code renders as a
paletted image, an SVG document, a PBM image or text.
*/
package qr // import "github.com/qrelement/qr"

import (
	"errors"

	"github.com/qrelement/qr/coding"
	"github.com/qrelement/qr/split"
)

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level = coding.Level

const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

// A Version is a QR code version, from 1 to 40.
type Version = coding.Version

const (
	MinVersion = coding.MinVersion
	MaxVersion = coding.MaxVersion
)

// Extended Channel Interpretation assignment numbers.
const (
	Latin1ECI   = split.Latin1ECI
	ShiftJISECI = split.ShiftJISECI
	UTF8ECI     = split.UTF8ECI
	BinaryECI   = split.BinaryECI
)

// DataTooLongError is returned when the data does not fit the largest
// allowed version.
type DataTooLongError = coding.DataTooLongError

var (
	ErrArgs       = errors.New("qr: invalid arguments")
	ErrLargeImage = errors.New("qr: image too large")
)

// Options control encoding.  The zero value encodes in the smallest
// version from 1 to 40 with an automatically chosen mask.
type Options struct {
	MinVersion Version           // smallest version, 0 for 1
	MaxVersion Version           // largest version, 0 for 40
	Mask       coding.MaskChoice // mask, automatic by default
	BoostECC   bool              // raise the level while the version holds
	NoKanji    bool              // do not use kanji mode
	ByteOnly   bool              // encode text in a single byte segment
	Latin1     bool              // byte segments hold ISO 8859-1
	ECI        uint32            // ECI designator, 0 for none
}

// versions returns the version range.
func (o *Options) versions() (lo, hi Version, err error) {
	lo, hi = o.MinVersion, o.MaxVersion
	if lo == 0 {
		lo = MinVersion
	}
	if hi == 0 {
		hi = MaxVersion
	}
	if !lo.IsValid() || !hi.IsValid() || lo > hi {
		return 0, 0, coding.ErrVersion
	}
	return lo, hi, nil
}

func (o *Options) check(level Level) error {
	if !level.IsValid() {
		return coding.ErrLevel
	}
	if !o.Mask.IsValid() {
		return coding.ErrMask
	}
	return nil
}

// A Code is an encoded QR code.  Its fields are read-only.
type Code struct {
	coding.Code
}

// A splitFunc returns segments for versions of a size class and their
// encoded length in bits, or -1 if they do not fit any version of the
// class.
type splitFunc func(class int) ([]coding.Segment, int, error)

// Encode returns an encoding of text at the given error correction
// level.
func Encode(text string, level Level, opts Options) (*Code, error) {
	if err := opts.check(level); err != nil {
		return nil, err
	}
	sp, err := split.New(text, split.Options{
		NoKanji:  opts.NoKanji,
		ByteOnly: opts.ByteOnly,
		Latin1:   opts.Latin1,
		ECI:      int(opts.ECI),
	})
	if err != nil {
		return nil, err
	}
	return encode(sp.Split, level, &opts)
}

// EncodeSegments returns an encoding of segs at the given error
// correction level.  The kanji and byte options of opts are ignored.
func EncodeSegments(segs []coding.Segment, level Level, opts Options) (*Code, error) {
	if err := opts.check(level); err != nil {
		return nil, err
	}
	if opts.ECI != 0 {
		eci, err := coding.MakeECI(int(opts.ECI))
		if err != nil {
			return nil, err
		}
		segs = append([]coding.Segment{eci}, segs...)
	}
	return encode(func(class int) ([]coding.Segment, int, error) {
		return segs, coding.TotalBits(segs, coding.SizeClasses[class].Min), nil
	}, level, &opts)
}

func encode(f splitFunc, level Level, opts *Options) (*Code, error) {
	v, segs, n, err := selectVersion(f, level, opts)
	if err != nil {
		return nil, err
	}
	if opts.BoostECC {
		for l := H; l > level; l-- {
			if n <= v.DataBits(l) {
				level = l
				break
			}
		}
	}
	c, err := coding.Encode(v, level, opts.Mask, segs...)
	if err != nil {
		return nil, err
	}
	return &Code{*c}, nil
}

// selectVersion returns the smallest allowed version holding the
// segments, the segments and their length.
func selectVersion(f splitFunc, level Level, opts *Options) (Version, []coding.Segment, int, error) {
	lo, hi, err := opts.versions()
	if err != nil {
		return 0, nil, 0, err
	}
	n := 0
	for class := lo.SizeClass(); class <= hi.SizeClass(); class++ {
		var segs []coding.Segment
		if segs, n, err = f(class); err != nil {
			return 0, nil, 0, err
		}
		sc := coding.SizeClasses[class]
		v, last := max(lo, sc.Min), min(hi, sc.Max)
		if n < 0 || last.DataBits(level) < n {
			continue
		}
		for v < last {
			if mid := (v + last) / 2; mid.DataBits(level) < n {
				v = mid + 1
			} else {
				last = mid
			}
		}
		return v, segs, n, nil
	}
	return 0, nil, 0, &DataTooLongError{
		Bits:       n,
		Capacity:   hi.DataBits(level),
		Level:      level,
		MaxVersion: hi,
	}
}

// SegmentsOf returns an optimal split of text for versions 1 to 9.
func SegmentsOf(text string) ([]coding.Segment, error) {
	return split.Segments(text)
}

// TotalBits returns the encoded length of segs in version v, or -1 if
// a character count does not fit its indicator.  Check for -1 before
// comparing with a capacity: the segments cannot be encoded in v at
// all.
func TotalBits(segs []coding.Segment, v Version) int {
	return coding.TotalBits(segs, v)
}
