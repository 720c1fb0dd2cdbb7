// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"strconv"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// A Mode is a QR segment encoding mode.
type Mode int8

// Encoding modes.
const (
	Numeric      Mode = iota // digits 0-9
	Alphanumeric             // digits, A-Z, space and $%*+-./:
	Byte                     // any data
	Kanji                    // JIS X 0208 characters as Shift JIS
	ECI                      // extended channel interpretation
	numModes
)

// modeInfo describes an encoding mode.
type modeInfo struct {
	name      string
	indicator uint32  // 4 bit mode indicator
	count     [3]int8 // character count width by size class
}

var modes = [numModes]modeInfo{
	Numeric:      {"numeric", 1, [3]int8{10, 12, 14}},
	Alphanumeric: {"alphanumeric", 2, [3]int8{9, 11, 13}},
	Byte:         {"byte", 4, [3]int8{8, 16, 16}},
	Kanji:        {"kanji", 8, [3]int8{8, 10, 12}},
	ECI:          {"eci", 7, [3]int8{0, 0, 0}},
}

func (m Mode) String() string {
	if m.IsValid() {
		return modes[m].name
	}
	return strconv.Itoa(int(m))
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool { return 0 <= m && m < numModes }

// Indicator returns the 4 bit mode indicator for m.
func (m Mode) Indicator() uint32 { return modes[m].indicator }

// CountBits returns the width of the character count indicator for m
// in QR versions of the given size class.
func (m Mode) CountBits(class int) int { return int(modes[m].count[class]) }

// PayloadBits returns the encoded length in bits of n characters
// in mode m, excluding the header.  For Byte n counts bytes.
func (m Mode) PayloadBits(n int) int {
	switch m {
	case Numeric:
		return (10*n + 2) / 3
	case Alphanumeric:
		return (11*n + 1) / 2
	case Byte:
		return n * 8
	case Kanji:
		return n * 13
	}
	return 0
}

// Length returns the encoded length in bits of n characters in mode m
// at the given QR version size class, including the header.
func (m Mode) Length(n, class int) int {
	return 4 + m.CountBits(class) + m.PayloadBits(n)
}

const alphamask uint64 = 0x07fffffe_07ffec31 // SPACE $% *+ -./ [0-9] : [A-Z]

// Alphanumeric encoding table.  Used after validation.
// "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
var alpha = [64]byte{
	00, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, // 0x40
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 00, 00, 00, 00, 00, // 0x50
	36, 00, 00, 00, 37, 38, 00, 00, 00, 00, 39, 40, 00, 41, 42, 43, // 0x20
	00, 01, 02, 03, 04, 05, 06, 07, 010, 9, 44, 00, 00, 00, 00, 00, // 0x30
}

// IsNumeric reports whether r is encodable in numeric mode.
func IsNumeric(r rune) bool { return uint32(r-'0') < 10 }

// IsAlphanumeric reports whether r is encodable in alphanumeric mode.
func IsAlphanumeric(r rune) bool {
	return uint32(r-' ') < 64 && alphamask>>(uint32(r)-' ')&1 != 0
}

// IsKanji reports whether the Unicode rune r maps to a double byte
// Shift JIS character in the QR kanji ranges 0x8140-0x9ffc and
// 0xe040-0xebbf.
func IsKanji(r rune) bool {
	if r < 0x80 {
		return false
	}
	_, ok := shiftJIS(r)
	return ok
}

var kanji struct {
	once sync.Once
	code map[rune]uint16 // Shift JIS code by rune
}

// kanjiRanges are the Shift JIS ranges of kanji mode.
var kanjiRanges = [2][2]uint16{{0x8140, 0x9ffc}, {0xe040, 0xebbf}}

func inKanjiRange(c uint16) bool {
	for _, r := range kanjiRanges {
		if r[0] <= c && c <= r[1] {
			return true
		}
	}
	return false
}

// kanjiTable maps each rune whose Shift JIS encoding lies in a kanji
// range to that code.  Shift JIS covers only the Basic Multilingual
// Plane.
func kanjiTable() map[rune]uint16 {
	kanji.once.Do(func() {
		enc := japanese.ShiftJIS.NewEncoder()
		m := make(map[rune]uint16, 8192)
		var buf [utf8.UTFMax]byte
		for r := rune(0x80); r <= 0xffff; r++ {
			if 0xd800 <= r && r < 0xe000 {
				continue
			}
			sj, err := enc.Bytes(buf[:utf8.EncodeRune(buf[:], r)])
			if err != nil || len(sj) != 2 {
				continue
			}
			if c := uint16(sj[0])<<8 | uint16(sj[1]); inKanjiRange(c) {
				m[r] = c
			}
		}
		kanji.code = m
	})
	return kanji.code
}

// shiftJIS returns the Shift JIS code of r if it is in a QR kanji
// range.
func shiftJIS(r rune) (uint16, bool) {
	if r < 0x80 {
		return 0, false
	}
	c, ok := kanjiTable()[r]
	return c, ok
}

// kanjiValue returns the 13 bit kanji mode value of a Shift JIS code.
func kanjiValue(c uint16) uint32 {
	if c >= 0xe040 {
		c -= 0xc140
	} else {
		c -= 0x8140
	}
	return uint32(c>>8)*0xc0 + uint32(c&0xff)
}
