// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "fmt"

// A Segment is a run of data encoded in a single mode.  Data holds the
// encoded payload only; the mode indicator and character count are
// written by Encode for a concrete version.  Segments are immutable
// once made.
type Segment struct {
	Mode  Mode // encoding mode
	Count int  // characters; bytes for Byte, 0 for ECI
	Data  Bits // payload bits
}

// SegmentError reports text that is not encodable in a mode.
type SegmentError struct {
	Mode Mode   // requested mode
	Text string // offending text
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("qr: non-%s string %#q", e.Mode, e.Text)
}

// MakeNumeric returns a numeric mode segment for a string of digits.
func MakeNumeric(s string) (Segment, error) {
	seg := Segment{Mode: Numeric, Count: len(s)}
	for i := 0; i < len(s); i++ {
		if !IsNumeric(rune(s[i])) {
			return Segment{}, &SegmentError{Numeric, s}
		}
	}
	for ; len(s) >= 3; s = s[3:] {
		seg.Data.Write(uint32(s[0]-'0')*100+uint32(s[1]-'0')*10+
			uint32(s[2]-'0'), 10)
	}
	switch len(s) {
	case 2:
		seg.Data.Write(uint32(s[0]-'0')*10+uint32(s[1]-'0'), 7)
	case 1:
		seg.Data.Write(uint32(s[0]-'0'), 4)
	}
	return seg, nil
}

// MakeAlphanumeric returns an alphanumeric mode segment for a string
// of characters from "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:".
func MakeAlphanumeric(s string) (Segment, error) {
	seg := Segment{Mode: Alphanumeric, Count: len(s)}
	for i := 0; i < len(s); i++ {
		if !IsAlphanumeric(rune(s[i])) {
			return Segment{}, &SegmentError{Alphanumeric, s}
		}
	}
	for ; len(s) >= 2; s = s[2:] {
		seg.Data.Write(uint32(alpha[s[0]&0x3f])*45+
			uint32(alpha[s[1]&0x3f]), 11)
	}
	if len(s) == 1 {
		seg.Data.Write(uint32(alpha[s[0]&0x3f]), 6)
	}
	return seg, nil
}

// MakeBytes returns a byte mode segment for arbitrary data.
func MakeBytes(b []byte) Segment {
	seg := Segment{Mode: Byte, Count: len(b)}
	seg.Data.b = append(make([]byte, 0, len(b)), b...)
	seg.Data.nbit = len(b) * 8
	return seg
}

// MakeKanji returns a kanji mode segment for UTF-8 text consisting
// of characters that IsKanji accepts.
func MakeKanji(s string) (Segment, error) {
	seg := Segment{Mode: Kanji}
	for _, r := range s {
		c, ok := shiftJIS(r)
		if !ok {
			return Segment{}, &SegmentError{Kanji, s}
		}
		seg.Data.Write(kanjiValue(c), 13)
		seg.Count++
	}
	return seg, nil
}

// MaxECI is the largest ECI assignment number.
const MaxECI = 999999

// MakeECI returns an ECI mode segment designating the extended
// channel interpretation assignment number n.
func MakeECI(n int) (Segment, error) {
	seg := Segment{Mode: ECI}
	switch {
	case n < 0 || n > MaxECI:
		return Segment{}, &SegmentError{ECI, fmt.Sprint(n)}
	case n < 1<<7:
		seg.Data.Write(uint32(n), 8)
	case n < 1<<14:
		seg.Data.Write(2<<14|uint32(n), 16)
	default:
		seg.Data.Write(6<<21|uint32(n), 24)
	}
	return seg, nil
}

// Length returns the encoded length in bits of seg in a QR code of
// version v including the header, or -1 if seg.Count does not fit in
// the character count indicator or seg.Mode is invalid.
func (seg *Segment) Length(v Version) int {
	if !seg.Mode.IsValid() {
		return -1
	}
	cb := seg.Mode.CountBits(v.SizeClass())
	if seg.Count >= 1<<cb {
		return -1
	}
	return 4 + cb + seg.Data.Bits()
}

// Encode writes seg encoded for version v to b.
func (seg *Segment) Encode(b *Bits, v Version) error {
	if !seg.Mode.IsValid() {
		return &SegmentError{Mode: seg.Mode}
	}
	if seg.Length(v) < 0 {
		return &SegmentError{seg.Mode, fmt.Sprintf("<%d characters>", seg.Count)}
	}
	b.Write(seg.Mode.Indicator(), 4)
	cb := seg.Mode.CountBits(v.SizeClass())
	b.Write(uint32(seg.Count), cb)
	b.Append(&seg.Data)
	return nil
}

// TotalBits returns the number of bits needed to encode segs in a QR
// code of version v, or -1 if any segment's character count overflows
// its count indicator.
func TotalBits(segs []Segment, v Version) int {
	n := 0
	for i := range segs {
		sl := segs[i].Length(v)
		if sl < 0 {
			return -1
		}
		n += sl
	}
	return n
}
