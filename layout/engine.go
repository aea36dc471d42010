package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/rtl"
	"github.com/lvillar/rtldoc/table"
)

// Line is one shaped line of text at an absolute position. Y is the top of
// the line box; the line box is H tall.
type Line struct {
	Text   string // logical order, as written in the record
	Visual string // display order with contextual forms, drawn left to right
	Runs   []rtl.ShapedRun
	X, Y   float64
	W, H   float64
	Size   float64
	Bold   bool
	RTL    bool
}

// Cell is one table cell.
type Cell struct {
	X, W  float64
	Lines []Line
}

// Row is one table row. The first row of a table is its header.
type Row struct {
	Y, H   float64
	Header bool
	Cells  []Cell
}

// PositionedBlock is a block placed on a page. A paragraph split across
// pages yields one PositionedBlock per page, numbered by Fragment.
type PositionedBlock struct {
	Block    Block
	Index    int // position of Block in the input
	Fragment int
	Page     int // 1-based
	X, Y     float64
	W, H     float64
	Lines    []Line
	Rows     []Row
	// Overflow marks a block taller than a whole page. It is placed at the
	// cursor without a page break and runs past the bottom margin.
	Overflow bool
}

// Pages returns the number of pages used by blocks.
func Pages(blocks []PositionedBlock) int {
	n := 0
	for _, b := range blocks {
		n = max(n, b.Page)
	}
	return n
}

// Engine lays out blocks for one page geometry. It keeps no state between
// calls and is safe for concurrent use.
type Engine struct {
	geo        Geometry
	typo       Typography
	m          Measurer
	shaper     *rtl.Shaper
	log        *zap.Logger
	onOverflow func(index int)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report overflowing blocks.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTypography overrides the font sizes.
func WithTypography(t Typography) Option {
	return func(e *Engine) { e.typo = t }
}

// WithShaper sets the shaper applied to every line.
func WithShaper(s *rtl.Shaper) Option {
	return func(e *Engine) {
		if s != nil {
			e.shaper = s
		}
	}
}

// WithOverflowHook registers fn to be called for every block taller than a page.
func WithOverflowHook(fn func(index int)) Option {
	return func(e *Engine) { e.onOverflow = fn }
}

// New returns an Engine for pages of geometry g measured with m.
func New(g Geometry, m Measurer, opts ...Option) *Engine {
	e := &Engine{
		geo:    g,
		typo:   DefaultTypography(),
		m:      m,
		shaper: rtl.NewShaper(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Geometry returns the page geometry of the engine.
func (e *Engine) Geometry() Geometry { return e.geo }

// Typography returns the font sizes of the engine.
func (e *Engine) Typography() Typography { return e.typo }

type cursor struct {
	page int
	y    float64
}

// Layout places blocks in order and returns them with absolute positions.
func (e *Engine) Layout(blocks []Block) ([]PositionedBlock, error) {
	if err := e.geo.Validate(); err != nil {
		return nil, err
	}
	if e.m == nil {
		return nil, errors.New("layout: no measurer")
	}
	if e.typo.Leading <= 0 || e.typo.Body <= 0 {
		return nil, errors.New("layout: invalid typography")
	}

	c := &cursor{page: 1, y: e.geo.Top}
	out := make([]PositionedBlock, 0, len(blocks))

	for i := 0; i < len(blocks); i++ {
		switch b := blocks[i].(type) {
		case nil:
			return nil, fmt.Errorf("layout: block %d is nil", i)
		case Paragraph:
			out = e.placeParagraph(out, c, i, b)
		case SignatureBox:
			j := i + 1
			for j < len(blocks) {
				if _, ok := blocks[j].(SignatureBox); !ok {
					break
				}
				j++
			}
			out = e.placeSignatures(out, c, i, blocks[i:j])
			i = j - 1
		default:
			out = append(out, e.placeBlock(c, i, b))
		}
	}
	return out, nil
}

// fit applies the page-break rule for a block of height h. It reports
// overflow instead of breaking when h exceeds the usable page height.
func (e *Engine) fit(c *cursor, h float64) (overflow bool) {
	if c.y+h <= e.geo.Limit() {
		return false
	}
	if h > e.geo.Usable() {
		return true
	}
	c.page++
	c.y = e.geo.Top
	return false
}

func (e *Engine) overflowed(index int, b Block, h float64) {
	e.log.Warn("block taller than page placed without break",
		zap.Int("block", index),
		zap.String("type", fmt.Sprintf("%T", b)),
		zap.Float64("height", h),
		zap.Float64("usable", e.geo.Usable()))
	if e.onOverflow != nil {
		e.onOverflow(index)
	}
}

func (e *Engine) placeParagraph(out []PositionedBlock, c *cursor, index int, p Paragraph) []PositionedBlock {
	cw := e.geo.ContentWidth()
	size, bold := e.typo.Size(p.Style), e.typo.Bold(p.Style)
	lh := e.typo.LineHeight(p.Style)

	frag := PositionedBlock{Block: p, Index: index, Page: c.page, X: e.geo.Left, Y: c.y, W: cw}
	overflow := false
	for _, text := range wrap(e.m, p.Text, size, bold, cw) {
		page := c.page
		if e.fit(c, lh) {
			overflow = true
			frag.Overflow = true
		}
		if c.page != page {
			if len(frag.Lines) > 0 {
				out = append(out, frag)
				frag = PositionedBlock{Block: p, Index: index, Fragment: frag.Fragment + 1, X: e.geo.Left, W: cw}
			}
			frag.Page, frag.Y = c.page, c.y
		}
		frag.Lines = append(frag.Lines, e.line(text, e.geo.Left, c.y, cw, lh, size, bold, p.Align))
		frag.H += lh
		c.y += lh
	}
	if overflow {
		e.overflowed(index, p, lh)
	}
	c.y += e.geo.Spacing
	return append(out, frag)
}

func (e *Engine) placeBlock(c *cursor, index int, b Block) PositionedBlock {
	cw := e.geo.ContentWidth()
	h := b.Height(e.m, e.typo, cw)
	pb := PositionedBlock{Block: b, Index: index, X: e.geo.Left, W: cw, H: h}
	if e.fit(c, h) {
		pb.Overflow = true
		e.overflowed(index, b, h)
	}
	pb.Page, pb.Y = c.page, c.y

	switch b := b.(type) {
	case BulletList:
		size, bold := e.typo.Size(b.Style), e.typo.Bold(b.Style)
		lh := e.typo.LineHeight(b.Style)
		y := pb.Y
		for _, it := range b.Items {
			for _, text := range wrap(e.m, Bullet+it, size, bold, cw) {
				pb.Lines = append(pb.Lines, e.line(text, pb.X, y, cw, lh, size, bold, Start))
				y += lh
			}
		}
	case KeyValueBox:
		lh := e.typo.LineHeight(Body)
		inner := cw - 2*boxPadding
		y := pb.Y + boxPadding
		for _, p := range b.Pairs {
			for _, text := range wrap(e.m, p.Text(), e.typo.Body, false, inner) {
				pb.Lines = append(pb.Lines, e.line(text, pb.X+boxPadding, y, inner, lh, e.typo.Body, false, Start))
				y += lh
			}
		}
	case Table:
		e.placeTable(&pb, b)
	}

	c.y += h + e.geo.Spacing
	return pb
}

func (e *Engine) placeTable(pb *PositionedBlock, tb Table) {
	grid := tb.grid(e.m, e.typo, pb.W)
	st := TableStyle()
	total := 0.0
	for _, w := range grid.Widths {
		total += w
	}
	x := pb.X
	if e.geo.RTL {
		x = pb.X + pb.W - total
	}
	pb.X, pb.W = x, total
	offs := table.Offsets(grid.Widths, x, e.geo.RTL)
	lh := e.typo.LineHeight(Body)

	y := pb.Y
	for _, gr := range grid.Rows {
		row := Row{Y: y, H: gr.H, Header: gr.Header, Cells: make([]Cell, len(grid.Widths))}
		for k, w := range grid.Widths {
			cell := Cell{X: offs[k], W: w}
			align := tb.Columns[k].Align
			if gr.Header {
				align = Center
			}
			inner := w - st.CellPadding.Horizontal()
			ly := y + st.CellPadding.Top
			for _, text := range gr.Lines[k] {
				cell.Lines = append(cell.Lines,
					e.line(text, offs[k]+st.CellPadding.Left, ly, inner, lh, e.typo.Body, gr.Header, align))
				ly += lh
			}
			row.Cells[k] = cell
		}
		pb.Rows = append(pb.Rows, row)
		y += gr.H
	}
}

// placeSignatures lays out consecutive signature boxes side by side. The
// first party sits on the start side of the page.
func (e *Engine) placeSignatures(out []PositionedBlock, c *cursor, first int, boxes []Block) []PositionedBlock {
	cw := e.geo.ContentWidth()
	n := float64(len(boxes))
	bw := (cw - signatureGap*(n-1)) / n

	h := 0.0
	for _, b := range boxes {
		h = max(h, b.Height(e.m, e.typo, bw))
	}
	overflow := e.fit(c, h)
	if overflow {
		e.overflowed(first, boxes[0], h)
	}

	lh := e.typo.LineHeight(Body)
	for k, b := range boxes {
		sb := b.(SignatureBox)
		x := e.geo.Left + float64(k)*(bw+signatureGap)
		if e.geo.RTL {
			x = e.geo.Left + cw - float64(k+1)*bw - float64(k)*signatureGap
		}
		pb := PositionedBlock{Block: sb, Index: first + k, Page: c.page, X: x, Y: c.y, W: bw, H: h, Overflow: overflow}
		y := c.y + boxPadding
		for i, l := range sb.lines() {
			bold := i == 0 && sb.Label != ""
			for _, text := range wrap(e.m, l, e.typo.Body, bold, bw-2*boxPadding) {
				pb.Lines = append(pb.Lines, e.line(text, x+boxPadding, y, bw-2*boxPadding, lh, e.typo.Body, bold, Center))
				y += lh
			}
		}
		out = append(out, pb)
	}

	c.y += h + e.geo.Spacing
	return out
}

// line shapes text and aligns it inside the span [x, x+w].
func (e *Engine) line(text string, x, y, w, h, size float64, bold bool, align Align) Line {
	dir := lineDirection(text, e.geo.RTL)
	runs := e.shaper.ShapeBase(text, dir)
	visual := ""
	for _, r := range runs {
		visual += r.Text
	}
	lw := e.m.Width(visual, size, bold)

	if align == Start {
		align = Left
		if dir == rtl.RTL {
			align = Right
		}
	}
	lx := x
	switch align {
	case Right:
		lx = x + w - lw
	case Center:
		lx = x + (w-lw)/2
	}

	return Line{
		Text: text, Visual: visual, Runs: runs,
		X: lx, Y: y, W: lw, H: h,
		Size: size, Bold: bold, RTL: dir == rtl.RTL,
	}
}
