package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/rtl"
	"github.com/lvillar/rtldoc/table"
)

// twips converts pt to twentieths of a point.
func twips(pt float64) int { return int(math.Round(pt * 20)) }

// halfPoints converts a font size in pt to half-points.
func halfPoints(pt float64) int { return int(math.Round(pt * 2)) }

func hexColor(c table.RGBColor) string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

// body accumulates the content of w:body.
type body struct {
	bytes.Buffer
	typo layout.Typography
	rtl  bool
	log  *zap.Logger
}

func (b *body) text(s string) { _ = xml.EscapeText(&b.Buffer, []byte(s)) }

func (b *body) blocks(blocks []layout.PositionedBlock) {
	for i := 0; i < len(blocks); i++ {
		switch v := blocks[i].Block.(type) {
		case layout.Paragraph:
			b.paragraph(v.Text, v.Style, v.Align)
		case layout.BulletList:
			for _, it := range v.Items {
				b.paragraph(layout.Bullet+it, v.Style, layout.Start)
			}
		case layout.KeyValueBox:
			b.keyValueBox(v, blocks[i].W)
		case layout.Table:
			b.table(v, blocks[i])
		case layout.SignatureBox:
			j := i + 1
			for j < len(blocks) {
				if _, ok := blocks[j].Block.(layout.SignatureBox); !ok {
					break
				}
				j++
			}
			b.signatures(blocks[i:j])
			i = j - 1
		default:
			b.log.Warn("block has no docx form, skipped",
				zap.Int("block", blocks[i].Index),
				zap.String("type", fmt.Sprintf("%T", v)))
		}
	}
}

// direction returns whether a paragraph of text runs right to left.
func (b *body) direction(text string) bool {
	switch rtl.BaseDirection(text) {
	case rtl.RTL:
		return true
	case rtl.LTR:
		return false
	}
	return b.rtl
}

// jc maps an alignment to a w:jc value relative to the paragraph direction.
func jc(a layout.Align, rtlPara bool) string {
	switch a {
	case layout.Center:
		return "center"
	case layout.Left:
		if rtlPara {
			return "end"
		}
		return "start"
	case layout.Right:
		if rtlPara {
			return "start"
		}
		return "end"
	}
	return ""
}

// paragraph writes text as one w:p. Newlines become line breaks.
func (b *body) paragraph(text string, style layout.Style, align layout.Align) {
	b.para(text, b.typo.Size(style), b.typo.Bold(style), align, style == layout.Title || style == layout.Heading, 160)
}

func (b *body) para(text string, size float64, bold bool, align layout.Align, keepNext bool, after int) {
	rtlPara := b.direction(text)
	b.WriteString("<w:p><w:pPr>")
	if keepNext {
		b.WriteString("<w:keepNext/>")
	}
	if rtlPara {
		b.WriteString("<w:bidi/>")
	}
	fmt.Fprintf(b, `<w:spacing w:after="%d" w:line="%d" w:lineRule="auto"/>`, after, int(math.Round(240*b.typo.Leading)))
	if v := jc(align, rtlPara); v != "" {
		fmt.Fprintf(b, `<w:jc w:val="%s"/>`, v)
	}
	b.WriteString("</w:pPr>")

	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("<w:r><w:br/></w:r>")
		}
		if line == "" {
			continue
		}
		for _, seg := range rtl.Segments(line) {
			b.run(seg, size, bold)
		}
	}
	b.WriteString("</w:p>")
}

func (b *body) run(seg rtl.Segment, size float64, bold bool) {
	if seg.Text == "" {
		return
	}
	b.WriteString("<w:r><w:rPr>")
	if bold {
		b.WriteString("<w:b/><w:bCs/>")
	}
	hp := halfPoints(size)
	fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, hp, hp)
	if seg.Direction == rtl.RTL {
		b.WriteString("<w:rtl/>")
	}
	b.WriteString(`</w:rPr><w:t xml:space="preserve">`)
	b.text(seg.Text)
	b.WriteString("</w:t></w:r>")
}

func (b *body) tableStart(widths []float64, border table.BorderStyle) {
	b.WriteString("<w:tbl><w:tblPr>")
	if b.rtl {
		b.WriteString("<w:bidiVisual/>")
	}
	b.WriteString(`<w:tblW w:w="0" w:type="auto"/><w:tblBorders>`)
	sz := max(2, int(math.Round(border.Width*8))) // eighths of a point
	color := hexColor(border.Color)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s w:val="single" w:sz="%d" w:space="0" w:color="%s"/>`, side, sz, color)
	}
	b.WriteString(`</w:tblBorders><w:tblLayout w:type="fixed"/></w:tblPr><w:tblGrid>`)
	for _, w := range widths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, twips(w))
	}
	b.WriteString("</w:tblGrid>")
}

func (b *body) cellStart(w float64, fill *table.RGBColor) {
	fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/>`, twips(w))
	if fill != nil {
		fmt.Fprintf(b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, hexColor(*fill))
	}
	b.WriteString("</w:tcPr>")
}

// spacer keeps a cell valid when it has no paragraph of its own.
func (b *body) spacer() { b.WriteString("<w:p/>") }

func (b *body) keyValueBox(kv layout.KeyValueBox, w float64) {
	st := layout.TableStyle()
	b.tableStart([]float64{w}, st.Border)
	b.WriteString("<w:tr>")
	b.cellStart(w, nil)
	for _, p := range kv.Pairs {
		b.para(p.Text(), b.typo.Body, false, layout.Start, false, 0)
	}
	if len(kv.Pairs) == 0 {
		b.spacer()
	}
	b.WriteString("</w:tc></w:tr></w:tbl>")
	b.spacer()
}

func (b *body) table(tb layout.Table, pb layout.PositionedBlock) {
	st := layout.TableStyle()
	widths := make([]float64, len(tb.Columns))
	if len(pb.Rows) > 0 {
		for k, c := range pb.Rows[0].Cells {
			if k < len(widths) {
				widths[k] = c.W
			}
		}
	}
	b.tableStart(widths, st.Border)

	header := make([]string, len(tb.Columns))
	for k, c := range tb.Columns {
		header[k] = c.Title
	}
	b.row(header, tb.Columns, widths, -1, st)
	for i, r := range tb.Rows {
		b.row(r, tb.Columns, widths, i, st)
	}
	b.WriteString("</w:tbl>")
	b.spacer()
}

// row writes one table row. bodyIdx is -1 for the header.
func (b *body) row(cells []string, cols []layout.Column, widths []float64, bodyIdx int, st table.Style) {
	header := bodyIdx < 0
	b.WriteString("<w:tr>")
	if header {
		b.WriteString("<w:trPr><w:tblHeader/></w:trPr>")
	}
	var fill *table.RGBColor
	if c, ok := st.RowFill(bodyIdx, header); ok {
		fill = &c
	}
	for k := range cols {
		text := ""
		if k < len(cells) {
			text = cells[k]
		}
		align := cols[k].Align
		if header {
			align = layout.Center
		}
		b.cellStart(widths[k], fill)
		b.para(text, b.typo.Body, header, align, false, 0)
		b.WriteString("</w:tc>")
	}
	b.WriteString("</w:tr>")
}

// signatures writes consecutive signature boxes as the cells of one row.
// Under w:bidiVisual the first cell is on the right.
func (b *body) signatures(row []layout.PositionedBlock) {
	st := layout.TableStyle()
	widths := make([]float64, len(row))
	for k, pb := range row {
		widths[k] = pb.W
	}
	b.tableStart(widths, st.Border)
	fmt.Fprintf(b, `<w:tr><w:trPr><w:cantSplit/><w:trHeight w:val="%d"/></w:trPr>`, twips(row[0].H))
	for k, pb := range row {
		s := pb.Block.(layout.SignatureBox)
		b.cellStart(widths[k], nil)
		if s.Label != "" {
			b.para(s.Label, b.typo.Body, true, layout.Center, false, 0)
		}
		if s.Name != "" {
			b.para(s.Name, b.typo.Body, false, layout.Center, false, 0)
		}
		if s.Label == "" && s.Name == "" {
			b.spacer()
		}
		b.WriteString("</w:tc>")
	}
	b.WriteString("</w:tr></w:tbl>")
	b.spacer()
}

// section writes the page size and margins.
func (b *body) section(g layout.Geometry) {
	b.WriteString("<w:sectPr>")
	fmt.Fprintf(b, `<w:pgSz w:w="%d" w:h="%d"/>`, twips(g.Width), twips(g.Height))
	fmt.Fprintf(b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		twips(g.Top), twips(g.Right), twips(g.Bottom), twips(g.Left))
	if g.RTL {
		b.WriteString("<w:bidi/>")
	}
	b.WriteString("</w:sectPr>")
}
