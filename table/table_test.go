package table_test

import (
	"strings"
	"testing"

	"github.com/lvillar/rtldoc/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordSplitter breaks on spaces assuming every rune is one unit wide.
var wordSplitter = table.SplitterFunc(func(text string, width float64) []string {
	var lines []string
	cur := ""
	for _, w := range strings.Fields(text) {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if float64(len([]rune(next))) > width && cur != "" {
			lines = append(lines, cur)
			next = w
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
})

func TestWidthsFixedAndAuto(t *testing.T) {
	w := table.Widths([]table.ColumnDef{{Width: 40}, {}, {Width: 60}, {}}, 300)
	assert.Equal(t, []float64{40, 100, 60, 100}, w)
}

func TestWidthsClamp(t *testing.T) {
	w := table.Widths([]table.ColumnDef{{MaxWidth: 50}, {MinWidth: 200}}, 200)
	assert.Equal(t, []float64{50, 200}, w)
}

func TestWidthsOverfull(t *testing.T) {
	w := table.Widths([]table.ColumnDef{{Width: 150}, {Width: 100}, {}}, 200)
	assert.Equal(t, []float64{150, 100, 0}, w)
	assert.Nil(t, table.Widths(nil, 100))
}

func TestOffsets(t *testing.T) {
	widths := []float64{10, 20, 30}
	assert.Equal(t, []float64{5, 15, 35}, table.Offsets(widths, 5, false))
	assert.Equal(t, []float64{55, 35, 5}, table.Offsets(widths, 5, true))
}

func TestComputeRowHeights(t *testing.T) {
	st := table.Style{CellPadding: table.UniformPadding(1), MinRowHeight: 5}
	cols := []table.ColumnDef{{Width: 12}, {Width: 12}}

	g := table.Compute(wordSplitter, cols,
		[]string{"Item", "Price"},
		[][]string{
			{"one two three four", "10"},
			{"short"},
		}, 24, 4, st)

	require.Len(t, g.Rows, 3)
	assert.True(t, g.Rows[0].Header)
	assert.Equal(t, 6.0, g.Rows[0].H)

	// Tallest cell wraps to two lines at content width 10.
	assert.Equal(t, []string{"one two", "three four"}, g.Rows[1].Lines[0])
	assert.Equal(t, 10.0, g.Rows[1].H)

	assert.Nil(t, g.Rows[2].Lines[1])
	assert.Equal(t, 6.0, g.Rows[2].H)
	assert.Equal(t, 22.0, g.Height())
}

func TestComputeMinimumHeight(t *testing.T) {
	st := table.DefaultStyle()
	g := table.Compute(wordSplitter, []table.ColumnDef{{}}, nil, [][]string{{""}}, 100, 1, st)
	require.Len(t, g.Rows, 1)
	assert.Equal(t, st.MinRowHeight, g.Rows[0].H)
}

func TestRowFill(t *testing.T) {
	st := table.DefaultStyle()
	c, ok := st.RowFill(0, true)
	assert.True(t, ok)
	assert.Equal(t, st.HeaderFill, c)

	even, _ := st.RowFill(0, false)
	odd, _ := st.RowFill(1, false)
	assert.NotEqual(t, even, odd)

	st.AlternateRows = nil
	_, ok = st.RowFill(3, false)
	assert.False(t, ok)
}
