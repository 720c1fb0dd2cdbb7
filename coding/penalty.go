// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Penalty points.
const (
	PenaltyRun     = 3  // run of 5 same-colour modules, +1 per extra module
	PenaltyBox     = 3  // 2x2 block of same-colour modules
	PenaltyFinder  = 40 // finder-like 1:1:3:1:1 pattern
	PenaltyBalance = 10 // per 5% of dark module imbalance beyond 5%
)

// Penalty returns the penalty value for a QR code.  The value is used
// for choosing the mask; lower is better.
//
// Total penalty is the sum of penalties for runs and boxes of
// same-colour modules, finder-like patterns and colour balance.
// Finder-like patterns are dark:light:dark:light:dark runs in the
// proportion 1:1:3:1:1 of any unit width n, with a light run of at
// least 4n on one side and n on the other.  The area outside the
// code counts as light.
//
// https://www.nayuki.io/page/creating-a-qr-code-step-by-step
func (c *Code) Penalty() int {
	siz := c.Size
	p := 0
	dark := 0
	var line, prev []byte
	for y := 0; y < siz; y++ {
		prev, line = line, c.Bitmap[y*c.Stride:(y+1)*c.Stride]
		var h runHistory
		colour, run := false, 0
		for x := 0; x < siz; x++ {
			b := line[x>>3]&(0x80>>(x&7)) != 0
			if b {
				dark++
			}
			if b == colour {
				if run++; run == 5 {
					p += PenaltyRun
				} else if run > 5 {
					p++
				}
			} else {
				h.add(run, siz)
				if !colour {
					p += h.finders() * PenaltyFinder
				}
				colour, run = b, 1
			}
			// 2x2 box with the bottom right corner at (x, y)
			if x > 0 && prev != nil {
				bx := x - 1
				l := line[bx>>3]&(0x80>>(bx&7)) != 0
				pl := prev[bx>>3]&(0x80>>(bx&7)) != 0
				pr := prev[x>>3]&(0x80>>(x&7)) != 0
				if b == l && b == pl && b == pr {
					p += PenaltyBox
				}
			}
		}
		p += h.terminate(colour, run, siz) * PenaltyFinder
	}
	for x := 0; x < siz; x++ {
		var h runHistory
		colour, run := false, 0
		off, bit := x>>3, byte(0x80)>>(x&7)
		for y := 0; y < siz; y++ {
			b := c.Bitmap[y*c.Stride+off]&bit != 0
			if b == colour {
				if run++; run == 5 {
					p += PenaltyRun
				} else if run > 5 {
					p++
				}
			} else {
				h.add(run, siz)
				if !colour {
					p += h.finders() * PenaltyFinder
				}
				colour, run = b, 1
			}
		}
		p += h.terminate(colour, run, siz) * PenaltyFinder
	}

	// Exact percentages get less penalty: 45% and 55% score like
	// 46%, not like 44%.
	total := siz * siz
	k := (abs(dark*20-total*10)+total-1)/total - 1
	return p + k*PenaltyBalance
}

// runHistory holds the lengths of the last 7 runs, latest first.
type runHistory [7]int

// add pushes a run of length n.  The first run of a line is extended
// by the light area before the code.
func (h *runHistory) add(n, siz int) {
	if h[0] == 0 {
		n += siz
	}
	copy(h[1:], h[:6])
	h[0] = n
}

// finders returns the number of finder-like patterns ending at the
// latest light run: 0, 1 or 2.
func (h *runHistory) finders() int {
	n := h[1]
	core := n > 0 && h[2] == n && h[3] == n*3 && h[4] == n && h[5] == n
	cnt := 0
	if core && h[0] >= n*4 && h[6] >= n {
		cnt++
	}
	if core && h[6] >= n*4 && h[0] >= n {
		cnt++
	}
	return cnt
}

// terminate ends a line with the light area after the code and
// returns the number of finder-like patterns it completes.
func (h *runHistory) terminate(colour bool, run, siz int) int {
	if colour {
		h.add(run, siz)
		run = 0
	}
	h.add(run+siz, siz)
	return h.finders()
}
