package layout

import (
	"strings"

	"github.com/lvillar/rtldoc/rtl"
)

// wrap breaks text into lines no wider than width. Lines stay in logical
// order; newlines force a break. Words are measured with their contextual
// forms applied, and a word wider than a whole line is split between runes.
func wrap(m Measurer, text string, size float64, bold bool, width float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	measure := func(s string) float64 { return m.Width(rtl.Reshape(s), size, bold) }
	space := measure(" ")

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var cur []string
		curW := 0.0
		for _, w := range words {
			ww := measure(w)
			if ww > width {
				if len(cur) > 0 {
					lines = append(lines, strings.Join(cur, " "))
					cur, curW = nil, 0
				}
				pieces := splitWord(w, width, measure)
				lines = append(lines, pieces[:len(pieces)-1]...)
				last := pieces[len(pieces)-1]
				cur, curW = []string{last}, measure(last)
				continue
			}
			if len(cur) > 0 && curW+space+ww > width {
				lines = append(lines, strings.Join(cur, " "))
				cur, curW = nil, 0
			}
			if len(cur) > 0 {
				curW += space
			}
			cur = append(cur, w)
			curW += ww
		}
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

// splitWord cuts a word into pieces that each fit width. Every piece holds
// at least one rune.
func splitWord(w string, width float64, measure func(string) float64) []string {
	var pieces []string
	rs := []rune(w)
	start := 0
	for i := 1; i <= len(rs); i++ {
		if i-start > 1 && measure(string(rs[start:i])) > width {
			pieces = append(pieces, string(rs[start:i-1]))
			start = i - 1
		}
	}
	return append(pieces, string(rs[start:]))
}
