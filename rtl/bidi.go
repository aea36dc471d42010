package rtl

import (
	"golang.org/x/text/unicode/bidi"
)

// classOf returns the Bidi_Class of r.
func classOf(r rune) bidi.Class {
	p, _ := bidi.LookupRune(r)
	return p.Class()
}

// isRemoved reports whether a class is dropped by rule X9. Explicit
// embedding, override and isolate controls are treated the same way, so
// this implementation resolves a single embedding level per paragraph.
func isRemoved(c bidi.Class) bool {
	switch c {
	case bidi.BN, bidi.LRE, bidi.RLE, bidi.LRO, bidi.RLO, bidi.PDF,
		bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
		return true
	}
	return false
}

func isStrong(c bidi.Class) bool {
	return c == bidi.L || c == bidi.R || c == bidi.AL
}

// paragraphLevel applies rules P2 and P3: the level is decided by the first
// strong character. fallback is used when there is none.
func paragraphLevel(cls []bidi.Class, fallback int) int {
	for _, c := range cls {
		switch c {
		case bidi.L:
			return 0
		case bidi.R, bidi.AL:
			return 1
		}
	}
	return fallback
}

func directionOfLevel(level int) bidi.Class {
	if level%2 == 1 {
		return bidi.R
	}
	return bidi.L
}

// resolveLevels runs the weak (W1-W7), neutral (N1-N2) and implicit (I1-I2)
// rules plus L1 over a sequence that already had X9 characters removed, and
// returns one embedding level per entry.
func resolveLevels(orig []bidi.Class, para int) []int {
	n := len(orig)
	t := make([]bidi.Class, n)
	copy(t, orig)
	sos := directionOfLevel(para)

	// W1: NSM takes the type of the previous character.
	for i := range t {
		if t[i] == bidi.NSM {
			if i == 0 {
				t[i] = sos
			} else {
				t[i] = t[i-1]
			}
		}
	}

	// W2: EN preceded by AL becomes AN. W3: AL becomes R.
	last := sos
	for i := range t {
		switch t[i] {
		case bidi.L, bidi.R, bidi.AL:
			last = t[i]
		case bidi.EN:
			if last == bidi.AL {
				t[i] = bidi.AN
			}
		}
	}
	for i := range t {
		if t[i] == bidi.AL {
			t[i] = bidi.R
		}
	}

	// W4: a single separator between two numbers of the same kind joins them.
	for i := 1; i+1 < n; i++ {
		prev, next := t[i-1], t[i+1]
		switch t[i] {
		case bidi.ES:
			if prev == bidi.EN && next == bidi.EN {
				t[i] = bidi.EN
			}
		case bidi.CS:
			if prev == bidi.EN && next == bidi.EN {
				t[i] = bidi.EN
			} else if prev == bidi.AN && next == bidi.AN {
				t[i] = bidi.AN
			}
		}
	}

	// W5: terminators adjacent to European numbers become numbers.
	for i := 0; i < n; {
		if t[i] != bidi.ET {
			i++
			continue
		}
		j := i
		for j < n && t[j] == bidi.ET {
			j++
		}
		if (i > 0 && t[i-1] == bidi.EN) || (j < n && t[j] == bidi.EN) {
			for k := i; k < j; k++ {
				t[k] = bidi.EN
			}
		}
		i = j
	}

	// W6: remaining separators and terminators become neutral.
	for i := range t {
		switch t[i] {
		case bidi.ES, bidi.ET, bidi.CS:
			t[i] = bidi.ON
		}
	}

	// W7: EN in a left-to-right context becomes L.
	last = sos
	for i := range t {
		switch t[i] {
		case bidi.L, bidi.R:
			last = t[i]
		case bidi.EN:
			if last == bidi.L {
				t[i] = bidi.L
			}
		}
	}

	// N1/N2: neutral runs take the surrounding direction when both sides
	// agree, otherwise the embedding direction. Numbers count as R.
	strongDir := func(c bidi.Class) (bidi.Class, bool) {
		switch c {
		case bidi.L:
			return bidi.L, true
		case bidi.R, bidi.EN, bidi.AN:
			return bidi.R, true
		}
		return 0, false
	}
	isNeutral := func(c bidi.Class) bool {
		switch c {
		case bidi.B, bidi.S, bidi.WS, bidi.ON:
			return true
		}
		return false
	}
	for i := 0; i < n; {
		if !isNeutral(t[i]) {
			i++
			continue
		}
		j := i
		for j < n && isNeutral(t[j]) {
			j++
		}
		before, after := sos, sos
		if i > 0 {
			if d, ok := strongDir(t[i-1]); ok {
				before = d
			}
		}
		if j < n {
			if d, ok := strongDir(t[j]); ok {
				after = d
			}
		}
		resolved := directionOfLevel(para)
		if before == after {
			resolved = before
		}
		for k := i; k < j; k++ {
			t[k] = resolved
		}
		i = j
	}

	// I1/I2.
	levels := make([]int, n)
	for i, c := range t {
		lvl := para
		if para%2 == 0 {
			switch c {
			case bidi.R:
				lvl++
			case bidi.AN, bidi.EN:
				lvl += 2
			}
		} else {
			switch c {
			case bidi.L, bidi.EN, bidi.AN:
				lvl++
			}
		}
		levels[i] = lvl
	}

	// L1: separators and trailing whitespace go back to the paragraph level.
	trailing := true
	for i := n - 1; i >= 0; i-- {
		switch orig[i] {
		case bidi.S, bidi.B:
			levels[i] = para
			trailing = true
		case bidi.WS:
			if trailing {
				levels[i] = para
			}
		default:
			trailing = false
		}
	}
	return levels
}

// visualOrder applies rule L2 and returns the logical indexes in display order.
func visualOrder(levels []int) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	if len(levels) == 0 {
		return order
	}
	highest, lowest := levels[0], levels[0]
	for _, l := range levels {
		highest = max(highest, l)
		lowest = min(lowest, l)
	}
	if lowest%2 == 0 {
		lowest++
	}
	for lvl := highest; lvl >= lowest; lvl-- {
		for i := 0; i < len(order); {
			if levels[order[i]] < lvl {
				i++
				continue
			}
			j := i
			for j < len(order) && levels[order[j]] >= lvl {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}

var mirrors = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
	'‹': '›', '›': '‹',
}

// mirror applies rule L4 to a character displayed at an odd level.
func mirror(r rune) rune {
	if m, ok := mirrors[r]; ok {
		return m
	}
	return r
}
