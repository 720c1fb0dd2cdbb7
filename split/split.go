// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package split splits text into QR code segments.

Text is split into numeric, alphanumeric, byte and kanji mode segments
to minimise the encoded length.  Byte mode segments hold UTF-8, or
ISO 8859-1 with Options.Latin1.  Kanji mode accepts characters with a
JIS X 0208 mapping in the QR kanji ranges.
*/
package split // import "github.com/qrelement/qr/split"

import (
	"errors"
	"math/bits"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/qrelement/qr/coding"
)

// QR error correction levels.
const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

// Extended Channel Interpretation assignment numbers.
const (
	Latin1ECI   = 3   // ISO 8859-1
	ShiftJISECI = 20  // Shift JIS
	UTF8ECI     = 26  // UTF-8
	BinaryECI   = 899 // 8-bit binary data
)

var (
	ErrLongText     = errors.New("qr: text too long")
	ErrNotEncodable = errors.New("qr: text not encodable in given modes")
)

// Options control the modes used for splitting.
type Options struct {
	NoKanji  bool // do not use kanji mode
	ByteOnly bool // encode the text as is in a single byte mode segment
	Latin1   bool // encode byte mode segments as ISO 8859-1
	ECI      int  // ECI assignment number to designate, 0 for none
}

// sizeLimit holds the data capacity in bits of the largest version
// of each size class by level.
var sizeLimit = func() (lim [4][3]int) {
	for l := L; l <= H; l++ {
		for c, sc := range coding.SizeClasses {
			lim[l][c] = sc.Max.DataBits(l)
		}
	}
	return
}()

// Segments returns an optimal split of text for QR versions 1 to 9
// with default options.
func Segments(text string) ([]coding.Segment, error) {
	return SegmentsFor(text, coding.Class0, Options{})
}

// SegmentsFor returns an optimal split of text for QR versions of the
// given size class.
func SegmentsFor(text string, class int, opts Options) ([]coding.Segment, error) {
	sp, err := New(text, opts)
	if err != nil {
		return nil, err
	}
	segs, _, err := sp.Split(class)
	return segs, err
}

/*
Split returns segments and the minimum QR code version for text at the
given error correction level.  It returns ErrLongText if the text does
not fit in a version 40 code.
*/
func Split(text string, level coding.Level, opts Options) ([]coding.Segment, coding.Version, error) {
	if !level.IsValid() {
		return nil, 0, coding.ErrLevel
	}
	sp, err := New(text, opts)
	if err != nil {
		return nil, 0, err
	}
	lim := sizeLimit[level]
	// Estimate the size class from the shortest possible encoding.
	// Numeric mode is the densest.
	class := 0
	for lim[class] < sp.MinLength() {
		if class++; class == 3 {
			return nil, 0, ErrLongText
		}
	}

	// Split data into segments for the size class.
	// If data is too big for the size class, increment class
	// and resplit.  bits will change, hence the loop.
	segs, n, err := sp.Split(class)
	for err == nil && (n < 0 || lim[class] < n) {
		for class++; class < 3 && n >= 0 && lim[class] < n; class++ {
		}
		if class == 3 {
			return nil, 0, ErrLongText
		}
		segs, n, err = sp.Split(class)
	}
	if err != nil {
		return nil, 0, err
	}

	// Find version in the size class.
	v := coding.SizeClasses[class].Min
	for max := coding.SizeClasses[class].Max; v < max; {
		if mid := (v + max) / 2; mid.DataBits(level) < n {
			v = mid + 1
		} else {
			max = mid
		}
	}
	return segs, v, nil
}

/*
Splitter and its component types.

New determines modes in which each rune in the string is encodable
and creates a slice of spans, each span describing a substring of runes
encodable in the same modes.  To avoid multiple allocations, the span
structure contains an array of states, one per mode.

Splitter.Split walks the spans forwards.  The state (n,m) holds the
smallest encoded length of the string up to the end of span n whose
last segment is in mode m and still open, and a link to the state of
span n-1 it extends.  Lengths are kept in sixths of a bit: each
character adds a fixed amount for its mode, and rounding a segment's
sum up to whole bits gives its payload length.  The open segment is
not rounded, so states with equal modes compare exactly.

The state (n,m) is created thusly.  For each state (n-1,mm), if m=mm
span n continues the open segment.  Otherwise the open segment is
rounded up, and a new segment is started with its header.  Of these,
the one with the smallest length is chosen as (n,m).  On ties the
continuation wins.

When the end of the span slice is reached, the state with the smallest
rounded length describes an optimal split for the whole string.
Following the links back gives the mode of each span; adjacent spans
in the same mode form one segment.

Character counts are not limited during the walk.  A segment too long
for its count indicator is longer than the largest version of the size
class holds, so no split of the text fits the class either.
*/
type (
	// state describes a split up to the end of a span.
	state struct {
		mode coding.Mode // mode of the open segment, -1 past the last one
		prev int8        // state of the previous span extended
		len  int         // encoded length in sixths of a bit
	}

	// span describes a span of bytes encodable in the same modes.
	span struct {
		len  uint32   // length of string in bytes
		rlen uint32   // length of string in Unicode code points
		blen uint32   // length of string in byte mode
		st   [4]state // states by mode
	}
)

// A Splitter calculates optimal splits of a string for each QR
// version size class.  A Splitter is not safe for concurrent use.
type Splitter struct {
	s      string
	sp     []span
	opts   Options
	header []coding.Segment // ECI designator
}

// chartbl bits: HK000kban
//
//	H  0x80  high byte
//	K  0x40  first byte of Kanji (maybe)       check kanji
//	k  0x08  kanji mode                        chartbl: unset
//	b  0x04  byte mode (always set)
//	a  0x02  alphanumeric mode
//	n  0x01  numeric mode
//
// The 4 low bits are the modes in which an ASCII character is
// encodable, numbered as coding.Mode.  The K bit is set on the 15
// bytes that may begin a UTF-8 character encodable in Kanji mode.
const (
	numMode   = 1 << iota // numeric
	alphaMode             // alphanumeric
	byteMode              // byte          chartbl: always set
	kanjiMode             // kanji         chartbl: unset
	_                     //
	_                     //
	kanjiBit              //               chartbl: maybe Kanji
	highBit               //               chartbl: high byte

	// modes above the lowest common mode are never shorter
	hier = numMode | alphaMode | byteMode

	by = byteMode       // ASCII byte
	al = by | alphaMode // alphanumeric
	nu = al | numMode   // numeric
	hi = by | highBit   // high
	ka = hi | kanjiBit  // kanji
)

var chartbl = [256]byte{
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x00
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x10
	al, by, by, by, al, al, by, by, by, by, al, al, by, al, al, al, // 0x20
	nu, nu, nu, nu, nu, nu, nu, nu, nu, nu, al, by, by, by, by, by, // 0x30
	by, al, al, al, al, al, al, al, al, al, al, al, al, al, al, al, // 0x40
	al, al, al, al, al, al, al, al, al, al, al, by, by, by, by, by, // 0x50
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x60
	by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, by, // 0x70
	hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, // 0x80
	hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, // 0x90
	hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, // 0xa0
	hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, // 0xb0
	hi, hi, ka, ka, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, ka, ka, // 0xc0
	ka, ka, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, // 0xd0
	hi, hi, ka, ka, ka, ka, ka, ka, ka, ka, hi, hi, hi, hi, hi, ka, // 0xe0
	hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, hi, // 0xf0
}

// classify returns a bit field of modes in which the first rune in s
// is encodable, and its length in bytes.
func (o *Options) classify(s string) (byte, int) {
	m := chartbl[s[0]]
	if m&highBit == 0 {
		return m, 1
	}
	r, sz := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && sz == 1 {
		return 0, 1
	}
	m &= kanjiBit
	if m != 0 && !o.NoKanji && coding.IsKanji(r) {
		m |= kanjiMode
	}
	if !o.Latin1 || r <= 0xff {
		m |= byteMode
	}
	return m & (kanjiMode | byteMode), sz
}

// New returns a Splitter for text.  If text is not encodable with
// the given options, New returns ErrNotEncodable.
func New(text string, opts Options) (*Splitter, error) {
	s := &Splitter{s: text, opts: opts}
	if opts.ECI != 0 {
		seg, err := coding.MakeECI(opts.ECI)
		if err != nil {
			return nil, err
		}
		s.header = []coding.Segment{seg}
	}
	if text == "" {
		return s, nil
	}
	if opts.ByteOnly {
		if opts.Latin1 {
			if _, err := s.latin1(text); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	// Scan the string, detect valid encoding modes for each character
	var (
		n, sz  int
		m      byte
		modes  = make([]byte, len(text))
		common = byte(hier)
		mask   = byte(numMode | alphaMode | byteMode | kanjiMode)
	)
	for i := 0; i < len(text); i += sz {
		old := m
		if m, sz = opts.classify(text[i:]); m == 0 {
			return nil, ErrNotEncodable
		}
		modes[i] = m
		if m != old {
			n++
			common &= m
		}
	}
	// If there are modes common for all characters, mask modes
	// within the hierarchy above the lowest common mode.
	mask ^= (common ^ -common) & hier

	// Populate spans
	sp := make([]span, n)
	old, n, start := byte(0), 0, uint32(0)
	for i, v := range modes {
		if v == 0 {
			continue
		} else if v &= mask; v == 0 {
			panic(coding.InternalError("no mode for character"))
		} else if v != old {
			if i != 0 {
				sp[n].len = uint32(i) - start
				n++
			}
			old = v
			start = uint32(i)
			st := &sp[n].st
			for j := range st {
				if v == 0 {
					st[j].mode = -1
					break
				}
				bit := v & -v
				v &^= bit
				st[j].mode = coding.Mode(bits.TrailingZeros8(bit))
			}
		}
		sp[n].rlen++
	}
	sp[n].len = uint32(len(modes)) - start
	s.sp = sp[:n+1]
	for i := range s.sp {
		v := &s.sp[i]
		if v.blen = v.len; opts.Latin1 {
			v.blen = v.rlen
		}
	}
	return s, nil
}

// MinLength returns the shortest length in bits any split of the text
// may have.
func (s *Splitter) MinLength() int {
	n := coding.TotalBits(s.header, coding.MinVersion)
	if s.s == "" {
		return n
	}
	return n + coding.Numeric.Length(utf8.RuneCountInString(s.s), coding.Class0)
}

// sixths holds the payload length of a character in sixths of a bit
// by mode.  For Byte it is per byte.
var sixths = [...]int{
	coding.Numeric:      20, // 10 bits per 3
	coding.Alphanumeric: 33, // 11 bits per 2
	coding.Byte:         48,
	coding.Kanji:        78,
}

// payload returns the payload length of v in mode m in sixths of a bit.
func (v *span) payload(m coding.Mode) int {
	n := v.rlen
	if m == coding.Byte {
		n = v.blen
	}
	return int(n) * sixths[m]
}

// headerLen returns the length of a segment header in sixths of a bit.
func headerLen(m coding.Mode, class int) int {
	return 6 * (4 + m.CountBits(class))
}

// round rounds n sixths of a bit up to whole bits.
func round(n int) int { return (n + 5) / 6 }

// add computes the states of v from those of p, the previous span,
// or from scratch if p is nil.
func (v *span) add(p *span, class int) {
	for j := range v.st {
		st := &v.st[j]
		if st.mode < 0 {
			break
		}
		pay := v.payload(st.mode)
		st.prev = -1
		if p == nil {
			st.len = headerLen(st.mode, class) + pay
			continue
		}
		for k := range p.st {
			ps := &p.st[k]
			if ps.mode < 0 {
				break
			}
			n := ps.len + pay
			if ps.mode != st.mode {
				n = 6*round(ps.len) + headerLen(st.mode, class) + pay
			}
			if k == 0 || n < st.len || n == st.len && ps.mode == st.mode {
				st.len, st.prev = n, int8(k)
			}
		}
	}
}

// best returns the index of the state of v with the smallest length
// rounded to whole bits.
func (v *span) best() int {
	b := 0
	for j := 1; j < len(v.st) && v.st[j].mode >= 0; j++ {
		if round(v.st[j].len) < round(v.st[b].len) {
			b = j
		}
	}
	return b
}

// Split returns an optimal split of the text for QR versions of the
// given size class and its encoded length in bits.  The segments are
// preceded by the ECI designator, if any.  If a segment is too long for
// its character count indicator, the length is -1.
func (s *Splitter) Split(class int) ([]coding.Segment, int, error) {
	if class < coding.Class0 || class > coding.Class2 {
		return nil, 0, coding.ErrVersion
	}
	segs := append([]coding.Segment(nil), s.header...)
	if s.s == "" {
		return segs, classBits(segs, class), nil
	}
	if s.opts.ByteOnly {
		seg, err := s.byteSegment(s.s)
		if err != nil {
			return nil, 0, err
		}
		segs = append(segs, seg)
		return segs, classBits(segs, class), nil
	}

	var prev *span
	for i := range s.sp {
		s.sp[i].add(prev, class)
		prev = &s.sp[i]
	}
	modes := make([]coding.Mode, len(s.sp))
	for i, j := len(s.sp)-1, prev.best(); i >= 0; i-- {
		st := &s.sp[i].st[j]
		modes[i] = st.mode
		j = int(st.prev)
	}

	str := s.s
	for i := 0; i < len(modes); {
		m, n := modes[i], uint32(0)
		for ; i < len(modes) && modes[i] == m; i++ {
			n += s.sp[i].len
		}
		seg, err := s.makeSegment(m, str[:n])
		if err != nil {
			return nil, 0, err
		}
		segs = append(segs, seg)
		str = str[n:]
	}
	n := classBits(segs, class)
	if n < 0 {
		return nil, -1, nil
	}
	return segs, n, nil
}

// classBits returns the encoded length of segs in size class class,
// or -1 if a character count overflows.
func classBits(segs []coding.Segment, class int) int {
	return coding.TotalBits(segs, coding.SizeClasses[class].Min)
}

// makeSegment returns a segment encoding s in mode m.
func (s *Splitter) makeSegment(m coding.Mode, str string) (coding.Segment, error) {
	switch m {
	case coding.Numeric:
		return coding.MakeNumeric(str)
	case coding.Alphanumeric:
		return coding.MakeAlphanumeric(str)
	case coding.Kanji:
		return coding.MakeKanji(str)
	}
	return s.byteSegment(str)
}

func (s *Splitter) byteSegment(str string) (coding.Segment, error) {
	if !s.opts.Latin1 {
		return coding.MakeBytes([]byte(str)), nil
	}
	b, err := s.latin1(str)
	if err != nil {
		return coding.Segment{}, err
	}
	return coding.MakeBytes(b), nil
}

// latin1 converts UTF-8 text to ISO 8859-1.
func (s *Splitter) latin1(str string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(str))
	if err != nil || !utf8.ValidString(str) {
		return nil, ErrNotEncodable
	}
	return b, nil
}
