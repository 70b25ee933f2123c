package domain

import "slices"

// Shape predicates over fixed-length sub-windows. Callers have already
// dropped sub-windows holding an opponent or off-board symbol.

func count(seg Window, sym Symbol) int {
	n := 0
	for _, s := range seg {
		if s == sym {
			n++
		}
	}
	return n
}

func blocked(seg Window) bool {
	for _, s := range seg {
		if s == SymOpponent || s == SymOffBoard {
			return true
		}
	}
	return false
}

func openEnds(seg Window) int {
	n := 0
	if seg[0] == SymEmpty {
		n++
	}
	if seg[len(seg)-1] == SymEmpty {
		n++
	}
	return n
}

// isFour matches five cells with four stones and at least one empty end.
func isFour(seg Window) bool {
	return len(seg) == 5 && count(seg, SymSelf) == 4 && openEnds(seg) > 0
}

// isStraightOpenThree matches . S S S .
func isStraightOpenThree(seg Window) bool {
	return len(seg) == 5 &&
		count(seg, SymSelf) == 3 &&
		count(seg, SymEmpty) == 2 &&
		openEnds(seg) == 2
}

var brokenThrees = [...]Window{
	{SymEmpty, SymSelf, SymSelf, SymEmpty, SymSelf, SymEmpty},
	{SymEmpty, SymSelf, SymEmpty, SymSelf, SymSelf, SymEmpty},
}

// isBrokenOpenThree matches . S S . S . and . S . S S .
func isBrokenOpenThree(seg Window) bool {
	if len(seg) != 6 || count(seg, SymSelf) != 3 || openEnds(seg) != 2 {
		return false
	}
	for _, shape := range brokenThrees {
		if slices.Equal(seg, shape) {
			return true
		}
	}
	return false
}

// countSegments counts the length-n sub-windows of w that cover the centre,
// hold no opponent or off-board symbol, and satisfy match.
func countSegments(w Window, n int, match func(Window) bool) int {
	center := w.Center()
	first := center - (n - 1)
	if first < 0 {
		first = 0
	}
	last := len(w) - n
	if last > center {
		last = center
	}
	total := 0
	for start := first; start <= last; start++ {
		seg := w[start : start+n]
		if blocked(seg) {
			continue
		}
		if match(seg) {
			total++
		}
	}
	return total
}
