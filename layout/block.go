package layout

import (
	"github.com/lvillar/rtldoc/rtl"
	"github.com/lvillar/rtldoc/table"
)

// Bullet prefixes every BulletList item.
const Bullet = "• "

const (
	boxPadding     = 6
	signatureSpace = 40 // blank area left for the handwritten signature
	signatureGap   = 24
)

// Block is a unit of content. Height reports the vertical space the block
// needs when laid out at the given width.
type Block interface {
	Height(m Measurer, t Typography, width float64) float64
}

// Paragraph is wrapped text. It is the only block that may be split across
// pages.
type Paragraph struct {
	Text  string
	Align Align
	Style Style
}

func (p Paragraph) Height(m Measurer, t Typography, width float64) float64 {
	return float64(len(wrap(m, p.Text, t.Size(p.Style), t.Bold(p.Style), width))) * t.LineHeight(p.Style)
}

// BulletList is a list of items, each drawn as its own paragraph behind a
// bullet.
type BulletList struct {
	Items []string
	Style Style
}

func (b BulletList) Height(m Measurer, t Typography, width float64) float64 {
	n := 0
	for _, it := range b.Items {
		n += len(wrap(m, Bullet+it, t.Size(b.Style), t.Bold(b.Style), width))
	}
	return float64(n) * t.LineHeight(b.Style)
}

// Pair is one entry of a KeyValueBox.
type Pair struct {
	Key, Value string
}

// Text returns the pair as it is written in documents.
func (p Pair) Text() string {
	switch {
	case p.Key == "":
		return p.Value
	case p.Value == "":
		return p.Key
	}
	return p.Key + ": " + p.Value
}

// KeyValueBox is a bordered box listing key/value pairs.
type KeyValueBox struct {
	Pairs []Pair
}

func (k KeyValueBox) Height(m Measurer, t Typography, width float64) float64 {
	inner := width - 2*boxPadding
	n := 0
	for _, p := range k.Pairs {
		n += len(wrap(m, p.Text(), t.Body, false, inner))
	}
	return float64(n)*t.LineHeight(Body) + 2*boxPadding
}

// Column is a table column. Width 0 shares the remaining space.
type Column struct {
	Title string
	Width float64
	Align Align
}

// Table is a header row followed by data rows.
type Table struct {
	Columns []Column
	Rows    [][]string
}

func (tb Table) Height(m Measurer, t Typography, width float64) float64 {
	return tb.grid(m, t, width).Height()
}

func (tb Table) grid(m Measurer, t Typography, width float64) table.Grid {
	cols := make([]table.ColumnDef, len(tb.Columns))
	header := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		cols[i] = table.ColumnDef{Width: c.Width}
		header[i] = c.Title
	}
	split := table.SplitterFunc(func(text string, w float64) []string {
		return wrap(m, text, t.Body, false, w)
	})
	return table.Compute(split, cols, header, tb.Rows, width, t.LineHeight(Body), TableStyle())
}

// TableStyle returns the style tables are laid out and drawn with.
func TableStyle() table.Style { return table.DefaultStyle() }

// SignatureBox reserves a bordered area for one party's signature.
// Consecutive signature boxes share a row.
type SignatureBox struct {
	Label string
	Name  string
}

func (s SignatureBox) lines() []string {
	var out []string
	if s.Label != "" {
		out = append(out, s.Label)
	}
	if s.Name != "" {
		out = append(out, s.Name)
	}
	return out
}

func (s SignatureBox) Height(m Measurer, t Typography, width float64) float64 {
	n := 0
	for _, l := range s.lines() {
		n += len(wrap(m, l, t.Body, true, width-2*boxPadding))
	}
	return float64(n)*t.LineHeight(Body) + signatureSpace + 2*boxPadding
}

// lineDirection returns the direction a line is shaped and aligned with.
func lineDirection(text string, pageRTL bool) rtl.Direction {
	if d := rtl.BaseDirection(text); d != rtl.Auto {
		return d
	}
	if pageRTL {
		return rtl.RTL
	}
	return rtl.LTR
}
