package table

// ColumnDef defines the properties of a table column.
type ColumnDef struct {
	Width    float64 // Fixed width. 0 means auto/fill.
	MinWidth float64 // Minimum width for auto columns.
	MaxWidth float64 // Maximum width for auto columns. 0 means unlimited.
}

// Splitter wraps text into lines no wider than width.
type Splitter interface {
	SplitLines(text string, width float64) []string
}

// SplitterFunc adapts a function to the Splitter interface.
type SplitterFunc func(text string, width float64) []string

// SplitLines calls f(text, width).
func (f SplitterFunc) SplitLines(text string, width float64) []string { return f(text, width) }

// Widths computes final column widths from the definitions and the total
// width available. Fixed columns keep their width; the remaining space is
// shared by the auto columns, clamped to their min and max.
func Widths(cols []ColumnDef, total float64) []float64 {
	if len(cols) == 0 {
		return nil
	}

	widths := make([]float64, len(cols))
	fixedTotal := 0.0
	autoCount := 0

	for i, col := range cols {
		if col.Width > 0 {
			widths[i] = col.Width
			fixedTotal += col.Width
		} else {
			autoCount++
		}
	}

	if autoCount > 0 {
		remaining := total - fixedTotal
		if remaining < 0 {
			remaining = 0
		}
		autoWidth := remaining / float64(autoCount)
		for i, col := range cols {
			if col.Width > 0 {
				continue
			}
			w := autoWidth
			if col.MinWidth > 0 && w < col.MinWidth {
				w = col.MinWidth
			}
			if col.MaxWidth > 0 && w > col.MaxWidth {
				w = col.MaxWidth
			}
			widths[i] = w
		}
	}

	return widths
}

// Offsets returns the left edge of every column for a table starting at x.
// In a right-to-left table the first column is the rightmost one.
func Offsets(widths []float64, x float64, rtl bool) []float64 {
	offs := make([]float64, len(widths))
	if !rtl {
		for i, w := range widths {
			offs[i] = x
			x += w
		}
		return offs
	}
	right := x
	for _, w := range widths {
		right += w
	}
	for i, w := range widths {
		right -= w
		offs[i] = right
	}
	return offs
}

// Row is the resolved geometry of one table row.
type Row struct {
	H      float64
	Header bool
	Lines  [][]string // wrapped lines per cell
}

// Grid is the resolved geometry of a whole table.
type Grid struct {
	Widths []float64
	Rows   []Row
}

// Height returns the sum of all row heights.
func (g Grid) Height() float64 {
	h := 0.0
	for _, r := range g.Rows {
		h += r.H
	}
	return h
}

// Compute wraps every cell and derives row heights. The header row is
// omitted when header is empty. Cells beyond the number of columns are
// ignored and missing cells are treated as empty.
func Compute(s Splitter, cols []ColumnDef, header []string, rows [][]string, total, lineH float64, st Style) Grid {
	g := Grid{Widths: Widths(cols, total)}
	if len(header) > 0 {
		g.Rows = append(g.Rows, rowHeight(s, header, g.Widths, lineH, st, true))
	}
	for _, r := range rows {
		g.Rows = append(g.Rows, rowHeight(s, r, g.Widths, lineH, st, false))
	}
	return g
}

// rowHeight computes the height needed for a row based on cell content.
func rowHeight(s Splitter, cells []string, widths []float64, lineH float64, st Style, header bool) Row {
	maxH := st.MinRowHeight
	row := Row{Header: header, Lines: make([][]string, len(widths))}

	for i, w := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}

		contentW := w - st.CellPadding.Horizontal()
		if contentW < 1 {
			contentW = 1
		}

		var lines []string
		if text != "" {
			lines = s.SplitLines(text, contentW)
		}
		row.Lines[i] = lines

		cellH := float64(len(lines))*lineH + st.CellPadding.Vertical()
		if cellH > maxH {
			maxH = cellH
		}
	}

	row.H = maxH
	return row
}
