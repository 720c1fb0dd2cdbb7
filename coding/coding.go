// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level QR coding details: segment
// encoding, error correction, module placement and masking.
package coding // import "github.com/qrelement/qr/coding"

import (
	"errors"
	"strconv"

	"github.com/qrelement/qr/gf256"
)

var (
	ErrLevel   = errors.New("qr: invalid level")
	ErrVersion = errors.New("qr: invalid version")
	ErrMask    = errors.New("qr: invalid mask")
)

// InternalError reports a broken invariant of the encoder.  It is
// only ever panicked, never returned.
type InternalError string

func (e InternalError) Error() string { return "qr: internal error: " + string(e) }

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 modules on a side.
// The larger the version, the more information the code can store.
type Version int

// Code versions.
const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// IsValid reports whether v is a QR version.
func (v Version) IsValid() bool { return MinVersion <= v && v <= MaxVersion }

// QR version size classes.  The width of character count indicators
// depends on the class.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
)

// SizeClasses lists the version range of each size class.
var SizeClasses = [3]struct{ Min, Max Version }{
	{1, 9}, {10, 26}, {27, 40},
}

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// Size returns the number of modules on a side of a code of version v.
func (v Version) Size() int { return int(v)*4 + 17 }

// Codewords returns the total number of data and error correction
// codewords in a code of version v.
func (v Version) Codewords() int { return vtab[v].bytes }

// RemainderBits returns the number of modules left after placing all
// codewords of version v.
func (v Version) RemainderBits() int { return vtab[v].remainder }

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	vt := &vtab[v]
	lev := vt.level[l]
	return vt.bytes - lev.nblock*lev.check
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int { return v.DataBytes(l) * 8 }

// Blocks returns the number of error correction blocks and the number
// of check bytes per block for the given version and level.
func (v Version) Blocks(l Level) (nblock, check int) {
	lev := vtab[v].level[l]
	return lev.nblock, lev.check
}

// AlignmentPositions returns the row and column coordinates of the
// alignment pattern centres of version v.
func (v Version) AlignmentPositions() []int {
	return append([]int(nil), vtab[v].align...)
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if l.IsValid() {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// IsValid reports whether l is a QR error correction level.
func (l Level) IsValid() bool { return L <= l && l <= H }

// ParseLevel parses a level name: a letter from "LMQH" in either case,
// or one of "low", "medium", "quartile" and "high".
func ParseLevel(s string) (Level, error) {
	switch s {
	case "l", "L", "low", "LOW":
		return L, nil
	case "m", "M", "medium", "MEDIUM":
		return M, nil
	case "q", "Q", "quartile", "QUARTILE":
		return Q, nil
	case "h", "H", "high", "HIGH":
		return H, nil
	}
	return 0, ErrLevel
}
