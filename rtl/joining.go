package rtl

import "unicode"

// joinType is the cursive joining behaviour of a code point, following the
// Joining_Type property of ArabicShaping.txt.
type joinType uint8

const (
	joinNone        joinType = iota // U: does not join
	joinRight                       // R: joins the preceding letter only
	joinDual                        // D: joins on both sides
	joinCausing                     // C: forces joining (ZWJ, tatweel)
	joinTransparent                 // T: skipped when looking for neighbours
)

// forms holds the presentation forms of one letter. Right-joining letters
// only have isolated and final forms.
type forms struct {
	isolated, final, initial, medial rune
}

func (f forms) dual() bool { return f.initial != 0 }

const (
	lam     = '\u0644'
	tatweel = '\u0640'
	zwj     = '\u200D'
	zwnj    = '\u200C'
)

var letterForms = map[rune]forms{
	'\u0621': {'\uFE80', 0, 0, 0},
	'\u0622': {'\uFE81', '\uFE82', 0, 0},
	'\u0623': {'\uFE83', '\uFE84', 0, 0},
	'\u0624': {'\uFE85', '\uFE86', 0, 0},
	'\u0625': {'\uFE87', '\uFE88', 0, 0},
	'\u0626': {'\uFE89', '\uFE8A', '\uFE8B', '\uFE8C'},
	'\u0627': {'\uFE8D', '\uFE8E', 0, 0},
	'\u0628': {'\uFE8F', '\uFE90', '\uFE91', '\uFE92'},
	'\u0629': {'\uFE93', '\uFE94', 0, 0},
	'\u062A': {'\uFE95', '\uFE96', '\uFE97', '\uFE98'},
	'\u062B': {'\uFE99', '\uFE9A', '\uFE9B', '\uFE9C'},
	'\u062C': {'\uFE9D', '\uFE9E', '\uFE9F', '\uFEA0'},
	'\u062D': {'\uFEA1', '\uFEA2', '\uFEA3', '\uFEA4'},
	'\u062E': {'\uFEA5', '\uFEA6', '\uFEA7', '\uFEA8'},
	'\u062F': {'\uFEA9', '\uFEAA', 0, 0},
	'\u0630': {'\uFEAB', '\uFEAC', 0, 0},
	'\u0631': {'\uFEAD', '\uFEAE', 0, 0},
	'\u0632': {'\uFEAF', '\uFEB0', 0, 0},
	'\u0633': {'\uFEB1', '\uFEB2', '\uFEB3', '\uFEB4'},
	'\u0634': {'\uFEB5', '\uFEB6', '\uFEB7', '\uFEB8'},
	'\u0635': {'\uFEB9', '\uFEBA', '\uFEBB', '\uFEBC'},
	'\u0636': {'\uFEBD', '\uFEBE', '\uFEBF', '\uFEC0'},
	'\u0637': {'\uFEC1', '\uFEC2', '\uFEC3', '\uFEC4'},
	'\u0638': {'\uFEC5', '\uFEC6', '\uFEC7', '\uFEC8'},
	'\u0639': {'\uFEC9', '\uFECA', '\uFECB', '\uFECC'},
	'\u063A': {'\uFECD', '\uFECE', '\uFECF', '\uFED0'},
	'\u0641': {'\uFED1', '\uFED2', '\uFED3', '\uFED4'},
	'\u0642': {'\uFED5', '\uFED6', '\uFED7', '\uFED8'},
	'\u0643': {'\uFED9', '\uFEDA', '\uFEDB', '\uFEDC'},
	'\u0644': {'\uFEDD', '\uFEDE', '\uFEDF', '\uFEE0'},
	'\u0645': {'\uFEE1', '\uFEE2', '\uFEE3', '\uFEE4'},
	'\u0646': {'\uFEE5', '\uFEE6', '\uFEE7', '\uFEE8'},
	'\u0647': {'\uFEE9', '\uFEEA', '\uFEEB', '\uFEEC'},
	'\u0648': {'\uFEED', '\uFEEE', 0, 0},
	'\u0649': {'\uFEEF', '\uFEF0', '\uFBE8', '\uFBE9'},
	'\u064A': {'\uFEF1', '\uFEF2', '\uFEF3', '\uFEF4'},

	// Persian letters.
	'\u067E': {'\uFB56', '\uFB57', '\uFB58', '\uFB59'}, // peh
	'\u0686': {'\uFB7A', '\uFB7B', '\uFB7C', '\uFB7D'}, // tcheh
	'\u0698': {'\uFB8A', '\uFB8B', 0, 0},                 // jeh
	'\u06A9': {'\uFB8E', '\uFB8F', '\uFB90', '\uFB91'}, // keheh
	'\u06AF': {'\uFB92', '\uFB93', '\uFB94', '\uFB95'}, // gaf
	'\u06CC': {'\uFBFC', '\uFBFD', '\uFBFE', '\uFBFF'}, // farsi yeh
	'\u06C0': {'\uFBA4', '\uFBA5', 0, 0},                 // heh with yeh above
}

// lamAlef maps the alef that follows a lam to the ligature's isolated and
// final forms.
var lamAlef = map[rune][2]rune{
	'\u0622': {'\uFEF5', '\uFEF6'},
	'\u0623': {'\uFEF7', '\uFEF8'},
	'\u0625': {'\uFEF9', '\uFEFA'},
	'\u0627': {'\uFEFB', '\uFEFC'},
}

func isTransparent(r rune) bool {
	switch {
	case r >= 0x0610 && r <= 0x061A,
		r >= 0x064B && r <= 0x065F,
		r == 0x0670,
		r >= 0x06D6 && r <= 0x06DC,
		r >= 0x06DF && r <= 0x06E4,
		r == 0x06E7, r == 0x06E8,
		r >= 0x06EA && r <= 0x06ED:
		return true
	}
	return false
}

func joiningOf(r rune) joinType {
	if f, ok := letterForms[r]; ok {
		if f.dual() {
			return joinDual
		}
		if f.final != 0 {
			return joinRight
		}
		return joinNone
	}
	switch {
	case r == zwj, r == tatweel:
		return joinCausing
	case isTransparent(r):
		return joinTransparent
	}
	return joinNone
}

// isArabicBlock reports whether r lies in one of the Arabic-script blocks.
func isArabicBlock(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF,
		r >= 0x0750 && r <= 0x077F,
		r >= 0x08A0 && r <= 0x08FF,
		r >= 0xFB50 && r <= 0xFDFF,
		r >= 0xFE70 && r <= 0xFEFF:
		return true
	}
	return false
}

func isPresentationForm(r rune) bool {
	return (r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF)
}

// neighbour returns the index of the closest non-transparent code point
// before (step -1) or after (step +1) i, or -1.
func neighbour(rs []rune, i, step int) int {
	for j := i + step; j >= 0 && j < len(rs); j += step {
		if joiningOf(rs[j]) != joinTransparent {
			return j
		}
	}
	return -1
}

// joinsForward reports whether the code point at index j (if any) connects
// to the letter that follows it.
func joinsForward(rs []rune, j int) bool {
	if j < 0 {
		return false
	}
	jt := joiningOf(rs[j])
	return jt == joinDual || jt == joinCausing
}

// joinsBackward reports whether the code point at index j (if any) connects
// to the letter before it.
func joinsBackward(rs []rune, j int) bool {
	if j < 0 {
		return false
	}
	switch joiningOf(rs[j]) {
	case joinDual, joinRight, joinCausing:
		return true
	}
	return false
}

// reshape replaces every Arabic-script letter in rs (logical order) with
// its contextual presentation form. Code points without a table entry are
// copied unchanged; unknown reports whether an Arabic-block letter had to be
// passed through that way.
func reshape(rs []rune) (out []rune, unknown bool) {
	out = make([]rune, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		f, ok := letterForms[r]
		if !ok {
			if isArabicBlock(r) && !isPresentationForm(r) && unicode.IsLetter(r) && joiningOf(r) == joinNone {
				unknown = true
			}
			out = append(out, r)
			continue
		}

		prevJoins := joinsForward(rs, neighbour(rs, i, -1))

		if r == lam {
			if j := neighbour(rs, i, +1); j >= 0 {
				if lig, ok := lamAlef[rs[j]]; ok {
					if prevJoins {
						out = append(out, lig[1])
					} else {
						out = append(out, lig[0])
					}
					out = append(out, rs[i+1:j]...)
					i = j
					continue
				}
			}
		}

		nextJoins := f.dual() && joinsBackward(rs, neighbour(rs, i, +1))
		if f.final == 0 {
			prevJoins = false
		}

		switch {
		case prevJoins && nextJoins:
			out = append(out, f.medial)
		case prevJoins:
			out = append(out, f.final)
		case nextJoins:
			out = append(out, f.initial)
		default:
			out = append(out, f.isolated)
		}
	}
	return out, unknown
}
