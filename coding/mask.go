// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "strconv"

// Mask patterns (x is the column, y the row):
//
//	0: ▄▀▄▀▄▀▄▀▄▀▄▀  1: ▄▄▄▄▄▄▄▄▄▄▄▄  2:  ██ ██ ██ ██  3: ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//
//	4:    ███   ███  5:  ▄▄▄▄▄ ▄▄▄▄▄  6:    ▄▄▄   ▄▄▄  7: ▄█▄▀ ▀▄█▄▀ ▀
//	   ███   ███         █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	      ███   ███      ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
//	   ███   ███         ▄▄▄▄▄ ▄▄▄▄▄        ▄▄▄   ▄▄▄     ▄█▄▀ ▀▄█▄▀ ▀
//	      ███   ███      █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	   ███   ███         ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
var maskFunc = [8]func(x, y int) bool{
	func(x, y int) bool { return (x+y)%2 == 0 },
	func(x, y int) bool { return y%2 == 0 },
	func(x, y int) bool { return x%3 == 0 },
	func(x, y int) bool { return (x+y)%3 == 0 },
	func(x, y int) bool { return (x/3+y/2)%2 == 0 },
	func(x, y int) bool { return x*y%2+x*y%3 == 0 },
	func(x, y int) bool { return (x*y%2+x*y%3)%2 == 0 },
	func(x, y int) bool { return ((x+y)%2+x*y%3)%2 == 0 },
}

// MaskFunc reports whether mask pattern m inverts the module at
// column x, row y.
func MaskFunc(m int) func(x, y int) bool { return maskFunc[m] }

// A MaskChoice selects the mask pattern of a code.  The zero value
// selects the pattern with the lowest penalty, the lowest numbered
// on ties.
type MaskChoice struct {
	m int8 // mask + 1, 0 for automatic
}

// AutoMask selects the pattern with the lowest penalty.
var AutoMask MaskChoice

// FixedMask selects mask pattern m, which must be between 0 and 7.
// Any other value yields an invalid MaskChoice.
func FixedMask(m int) MaskChoice {
	if m < 0 || m > 7 {
		return MaskChoice{-1}
	}
	return MaskChoice{int8(m + 1)}
}

// ParseMask returns the MaskChoice for n: -1 for automatic selection
// or a mask pattern from 0 to 7.
func ParseMask(n int) (MaskChoice, error) {
	if n < -1 || n > 7 {
		return AutoMask, ErrMask
	} else if n == -1 {
		return AutoMask, nil
	}
	return FixedMask(n), nil
}

// Fixed returns the selected mask pattern and true, or false for
// automatic selection.
func (c MaskChoice) Fixed() (int, bool) { return int(c.m) - 1, c.m != 0 }

// IsValid reports whether c is automatic or a valid fixed mask.
func (c MaskChoice) IsValid() bool { return 0 <= c.m && c.m <= 8 }

func (c MaskChoice) String() string {
	if m, ok := c.Fixed(); ok {
		return strconv.Itoa(m)
	}
	return "auto"
}
