// Package rtl prepares mixed Persian/Arabic and Latin text for drawing with
// absolute positioning.
//
// Shaping replaces Arabic-script letters with their contextual presentation
// forms (isolated, initial, medial, final and the lam-alef ligatures) and
// then reorders the text with the Unicode Bidirectional Algorithm, so the
// resulting runs can be drawn left to right. Digits and Latin words keep
// their left-to-right order inside right-to-left text.
//
// The implementation resolves one embedding level per paragraph: explicit
// embedding and isolate controls are dropped as rule X9 does for boundary
// neutrals. Document text never carries them.
package rtl

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// Direction is the writing direction of a run or paragraph.
type Direction uint8

const (
	// Auto derives the paragraph direction from its first strong character.
	Auto Direction = iota
	LTR
	RTL
)

func (d Direction) String() string {
	switch d {
	case LTR:
		return "ltr"
	case RTL:
		return "rtl"
	}
	return "auto"
}

// ShapedRun is a span of shaped text at a single embedding level. Text is
// already in display order: concatenating the runs returned by Shape and
// drawing the result left to right gives the intended reading order.
type ShapedRun struct {
	Text      string
	Direction Direction
	Level     int
	Logical   int // position of the run in logical (storage) order
	Visual    int // position of the run in visual (display) order
}

// Segment is a directional span of unshaped text in logical order. Flowing
// emitters use segments to mark right-to-left runs.
type Segment struct {
	Text      string
	Direction Direction
}

// Shaper runs the shaping pipeline. It is safe for concurrent use.
type Shaper struct {
	log      *zap.Logger
	base     Direction
	onDegrad func(reason string)
	warnOnce sync.Once
}

// Option configures a Shaper.
type Option func(*Shaper)

// WithLogger sets the logger used to report degraded shaping.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shaper) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBase fixes the paragraph direction instead of detecting it.
func WithBase(d Direction) Option {
	return func(s *Shaper) { s.base = d }
}

// WithDegradedHook registers fn to be called every time text is passed
// through partially or entirely unshaped.
func WithDegradedHook(fn func(reason string)) Option {
	return func(s *Shaper) { s.onDegrad = fn }
}

// NewShaper returns a Shaper with automatic paragraph direction.
func NewShaper(opts ...Option) *Shaper {
	s := &Shaper{log: zap.NewNop(), base: Auto}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultShaper = NewShaper()

// Shape runs text through the default Shaper.
func Shape(text string) []ShapedRun { return defaultShaper.Shape(text) }

// Visual runs text through the default Shaper and returns the display string.
func Visual(text string) string { return defaultShaper.Visual(text) }

// HasArabic reports whether text contains a code point from an Arabic-script block.
func HasArabic(text string) bool {
	for _, r := range text {
		if isArabicBlock(r) {
			return true
		}
	}
	return false
}

// Reshape returns text with contextual letter forms applied, still in
// logical order.
func Reshape(text string) string {
	if !HasArabic(text) {
		return text
	}
	out, _ := reshape([]rune(norm.NFC.String(text)))
	return string(out)
}

// BaseDirection returns the direction of the first strong character of
// text, or Auto when there is none.
func BaseDirection(text string) Direction {
	for _, r := range text {
		switch classOf(r) {
		case bidi.L:
			return LTR
		case bidi.R, bidi.AL:
			return RTL
		}
	}
	return Auto
}

// Shape shapes text using the Shaper's base direction.
func (s *Shaper) Shape(text string) []ShapedRun {
	return s.ShapeBase(text, s.base)
}

// Visual returns the shaped runs of text concatenated in display order.
func (s *Shaper) Visual(text string) string {
	runs := s.Shape(text)
	if len(runs) == 1 {
		return runs[0].Text
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// ShapeBase shapes text with an explicit paragraph direction. Text without
// Arabic-script characters is returned unchanged as a single LTR run.
// Shaping never fails: on any internal error the original text comes back
// as a single run.
func (s *Shaper) ShapeBase(text string, base Direction) (runs []ShapedRun) {
	if !HasArabic(text) {
		return []ShapedRun{{Text: text, Direction: LTR}}
	}

	defer func() {
		if r := recover(); r != nil {
			s.degraded("recovered", zap.Any("panic", r))
			runs = []ShapedRun{{Text: text, Direction: LTR}}
		}
	}()

	shaped, unknown := reshape([]rune(norm.NFC.String(text)))
	if unknown {
		s.degraded("unknown code point")
	}

	kept := make([]rune, 0, len(shaped))
	cls := make([]bidi.Class, 0, len(shaped))
	for _, r := range shaped {
		c := classOf(r)
		if isRemoved(c) {
			continue
		}
		kept = append(kept, r)
		cls = append(cls, c)
	}
	if len(kept) == 0 {
		return []ShapedRun{{Text: "", Direction: LTR}}
	}

	levels := resolveLevels(cls, baseLevel(cls, base))
	return buildRuns(kept, levels, visualOrder(levels))
}

func (s *Shaper) degraded(reason string, fields ...zap.Field) {
	if s.onDegrad != nil {
		s.onDegrad(reason)
	}
	s.warnOnce.Do(func() {
		s.log.Warn("text passed through unshaped",
			append(fields, zap.String("reason", reason))...)
	})
}

func baseLevel(cls []bidi.Class, base Direction) int {
	switch base {
	case LTR:
		return 0
	case RTL:
		return 1
	}
	return paragraphLevel(cls, 0)
}

func buildRuns(rs []rune, levels, order []int) []ShapedRun {
	type span struct {
		run   ShapedRun
		start int
	}
	var spans []span
	for k := 0; k < len(order); {
		begin := k
		lvl := levels[order[k]]
		odd := lvl%2 == 1
		step := 1
		if odd {
			step = -1
		}
		for k++; k < len(order) && levels[order[k]] == lvl && order[k] == order[k-1]+step; k++ {
		}

		var b strings.Builder
		for _, idx := range order[begin:k] {
			r := rs[idx]
			if odd {
				r = mirror(r)
			}
			b.WriteRune(r)
		}
		dir := LTR
		if odd {
			dir = RTL
		}
		spans = append(spans, span{
			run:   ShapedRun{Text: b.String(), Direction: dir, Level: lvl, Visual: len(spans)},
			start: min(order[begin], order[k-1]),
		})
	}

	byLogical := make([]int, len(spans))
	for i := range byLogical {
		byLogical[i] = i
	}
	sort.Slice(byLogical, func(a, b int) bool {
		return spans[byLogical[a]].start < spans[byLogical[b]].start
	})
	for pos, i := range byLogical {
		spans[i].run.Logical = pos
	}

	runs := make([]ShapedRun, len(spans))
	for i, sp := range spans {
		runs[i] = sp.run
	}
	return runs
}

// Segments splits text into directional spans in logical order without
// reshaping it. Boundary neutrals such as ZWNJ stay in the text and take
// the direction of the preceding character.
func Segments(text string) []Segment {
	if !HasArabic(text) {
		return []Segment{{Text: text, Direction: LTR}}
	}
	rs := []rune(text)
	keptIdx := make([]int, 0, len(rs))
	cls := make([]bidi.Class, 0, len(rs))
	for i, r := range rs {
		c := classOf(r)
		if isRemoved(c) {
			continue
		}
		keptIdx = append(keptIdx, i)
		cls = append(cls, c)
	}
	para := paragraphLevel(cls, 0)
	resolved := resolveLevels(cls, para)

	levels := make([]int, len(rs))
	for i := range levels {
		levels[i] = -1
	}
	for k, i := range keptIdx {
		levels[i] = resolved[k]
	}
	prev := para
	for i := range levels {
		if levels[i] < 0 {
			levels[i] = prev
		}
		prev = levels[i]
	}

	var segs []Segment
	start := 0
	for i := 1; i <= len(rs); i++ {
		if i < len(rs) && levels[i]%2 == levels[start]%2 {
			continue
		}
		dir := LTR
		if levels[start]%2 == 1 {
			dir = RTL
		}
		segs = append(segs, Segment{Text: string(rs[start:i]), Direction: dir})
		start = i
	}
	return segs
}
