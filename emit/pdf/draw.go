package pdf

import (
	"github.com/go-pdf/fpdf"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/table"
)

// signatureInset is the horizontal inset of the dashed signature line.
const signatureInset = 12

type drawer struct {
	doc      *fpdf.Fpdf
	family   string
	embedded bool
	style    table.Style
}

func (d *drawer) block(b layout.PositionedBlock) {
	switch b.Block.(type) {
	case layout.KeyValueBox:
		d.border()
		d.doc.Rect(b.X, b.Y, b.W, b.H, "D")
	case layout.SignatureBox:
		d.border()
		d.doc.Rect(b.X, b.Y, b.W, b.H, "D")
		y := b.Y + b.H - signatureInset
		d.doc.SetDashPattern([]float64{2, 2}, 0)
		d.doc.Line(b.X+signatureInset, y, b.X+b.W-signatureInset, y)
		d.doc.SetDashPattern([]float64{}, 0)
	case layout.Table:
		d.rows(b.Rows)
	}
	for _, l := range b.Lines {
		d.text(l)
	}
}

func (d *drawer) border() {
	c := d.style.Border.Color
	d.doc.SetDrawColor(c.R, c.G, c.B)
	d.doc.SetLineWidth(d.style.Border.Width)
}

func (d *drawer) rows(rows []layout.Row) {
	body := 0
	for _, r := range rows {
		fill, ok := d.style.RowFill(body, r.Header)
		if !r.Header {
			body++
		}
		for _, c := range r.Cells {
			if ok {
				d.doc.SetFillColor(fill.R, fill.G, fill.B)
				d.doc.Rect(c.X, r.Y, c.W, r.H, "F")
			}
			d.border()
			d.doc.Rect(c.X, r.Y, c.W, r.H, "D")
		}
		if r.Header {
			tc := d.style.HeaderText
			d.doc.SetTextColor(tc.R, tc.G, tc.B)
		}
		for _, c := range r.Cells {
			for _, l := range c.Lines {
				d.text(l)
			}
		}
		d.doc.SetTextColor(0, 0, 0)
	}
	d.doc.SetFillColor(255, 255, 255)
	d.doc.SetDrawColor(0, 0, 0)
}

// text draws one line on its baseline. The fallback font cannot show the
// contextual forms, so it gets the logical text.
func (d *drawer) text(l layout.Line) {
	s := l.Visual
	if !d.embedded {
		s = l.Text
	}
	if s == "" {
		return
	}
	d.doc.SetFont(d.family, fontStyle(l.Bold), l.Size)
	d.doc.Text(l.X, baseline(l), s)
}

// baseline centers the glyphs vertically in the line box.
func baseline(l layout.Line) float64 { return l.Y + l.H/2 + 0.35*l.Size }

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}
