package layout_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lvillar/rtldoc/layout"
)

// halfEm measures every rune as half the font size.
var halfEm = layout.MeasurerFunc(func(s string, size float64, _ bool) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 0.5
})

type fixedBlock struct{ h float64 }

func (b fixedBlock) Height(layout.Measurer, layout.Typography, float64) float64 { return b.h }

func testGeometry() layout.Geometry {
	return layout.Geometry{Width: 600, Height: 800, Top: 50, Bottom: 50, Left: 50, Right: 50}
}

func TestEighthBlockStartsOnPageTwo(t *testing.T) {
	blocks := make([]layout.Block, 10)
	for i := range blocks {
		blocks[i] = fixedBlock{h: 100}
	}

	out, err := layout.New(testGeometry(), halfEm).Layout(blocks)
	require.NoError(t, err)
	require.Len(t, out, 10)

	for i := 0; i < 7; i++ {
		assert.Equal(t, 1, out[i].Page, "block %d", i+1)
		assert.Equal(t, 50+float64(i)*100, out[i].Y)
	}
	assert.Equal(t, 2, out[7].Page)
	assert.Equal(t, 50.0, out[7].Y)
	assert.Equal(t, 2, layout.Pages(out))
}

func TestSpacingAdvancesCursor(t *testing.T) {
	g := testGeometry()
	g.Spacing = layout.DefaultBlockSpacing

	out, err := layout.New(g, halfEm).Layout([]layout.Block{fixedBlock{100}, fixedBlock{100}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, out[0].Y)
	assert.Equal(t, 158.0, out[1].Y)
}

func TestOversizeBlockPlacedWithoutBreak(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	var hooked []int
	e := layout.New(testGeometry(), halfEm,
		layout.WithLogger(zap.New(core)),
		layout.WithOverflowHook(func(i int) { hooked = append(hooked, i) }))

	out, err := e.Layout([]layout.Block{fixedBlock{100}, fixedBlock{1000}, fixedBlock{100}})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.False(t, out[0].Overflow)
	assert.True(t, out[1].Overflow)
	assert.Equal(t, 1, out[1].Page)
	assert.Equal(t, 150.0, out[1].Y)

	// The following block starts a fresh page.
	assert.Equal(t, 2, out[2].Page)
	assert.Equal(t, 50.0, out[2].Y)

	assert.Equal(t, []int{1}, hooked)
	assert.Equal(t, 1, logs.Len())
}

func TestParagraphSplitsByLine(t *testing.T) {
	g := layout.Geometry{Width: 300, Height: 200, Top: 20, Bottom: 20, Left: 20, Right: 20}
	typo := layout.Typography{Body: 10, Title: 10, Heading: 10, Small: 10, Leading: 1.5}

	text := "l01\nl02\nl03\nl04\nl05\nl06\nl07\nl08\nl09\nl10\nl11\nl12\nl13\nl14\nl15"
	out, err := layout.New(g, halfEm, layout.WithTypography(typo)).Layout([]layout.Block{
		layout.Paragraph{Text: text},
		fixedBlock{10},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	first, second := out[0], out[1]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 0, second.Index)
	assert.Equal(t, []int{0, 1}, []int{first.Fragment, second.Fragment})
	assert.Equal(t, []int{1, 2}, []int{first.Page, second.Page})

	require.Len(t, first.Lines, 10)
	require.Len(t, second.Lines, 5)
	assert.Equal(t, "l11", second.Lines[0].Text)
	assert.Equal(t, 20.0, second.Y)
	assert.Equal(t, 20.0, second.Lines[0].Y)
	assert.Equal(t, 150.0, first.H)
	assert.Equal(t, 75.0, second.H)

	assert.Equal(t, 2, out[2].Page)
	assert.Equal(t, 95.0, out[2].Y)
}

func TestParagraphBreaksBeforeFirstLine(t *testing.T) {
	g := layout.Geometry{Width: 300, Height: 200, Top: 20, Bottom: 20, Left: 20, Right: 20}
	typo := layout.Typography{Body: 10, Title: 10, Heading: 10, Small: 10, Leading: 1.5}

	out, err := layout.New(g, halfEm, layout.WithTypography(typo)).Layout([]layout.Block{
		fixedBlock{150},
		layout.Paragraph{Text: "one\ntwo"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[1].Page)
	assert.Equal(t, 0, out[1].Fragment)
	assert.Len(t, out[1].Lines, 2)
}

func TestStartAlignmentFollowsLineDirection(t *testing.T) {
	g := testGeometry()
	g.RTL = true
	right := g.Width - g.Right

	out, err := layout.New(g, halfEm).Layout([]layout.Block{
		layout.Paragraph{Text: "سلام دنیا"},
		layout.Paragraph{Text: "Hello world"},
		layout.Paragraph{Text: "12345"},
		layout.Paragraph{Text: "Centered", Align: layout.Center},
	})
	require.NoError(t, err)
	require.Len(t, out, 4)

	fa := out[0].Lines[0]
	assert.True(t, fa.RTL)
	assert.InDelta(t, right, fa.X+fa.W, 1e-9)
	assert.Equal(t, "سلام دنیا", fa.Text)
	assert.NotEqual(t, fa.Text, fa.Visual)

	en := out[1].Lines[0]
	assert.False(t, en.RTL)
	assert.Equal(t, g.Left, en.X)
	assert.Equal(t, "Hello world", en.Visual)

	num := out[2].Lines[0]
	assert.True(t, num.RTL, "neutral lines take the page direction")
	assert.InDelta(t, right, num.X+num.W, 1e-9)

	c := out[3].Lines[0]
	assert.InDelta(t, g.Left+(g.ContentWidth()-c.W)/2, c.X, 1e-9)
}

func TestSignaturesShareRow(t *testing.T) {
	for _, rtl := range []bool{true, false} {
		g := testGeometry()
		g.RTL = rtl

		out, err := layout.New(g, halfEm).Layout([]layout.Block{
			layout.SignatureBox{Label: "Client", Name: "Ali"},
			layout.SignatureBox{Label: "Contractor", Name: "Company"},
		})
		require.NoError(t, err)
		require.Len(t, out, 2)

		a, b := out[0], out[1]
		assert.Equal(t, a.Y, b.Y)
		assert.Equal(t, a.H, b.H)
		assert.Equal(t, a.W, b.W)
		assert.Equal(t, []int{0, 1}, []int{a.Index, b.Index})
		if rtl {
			assert.Greater(t, a.X, b.X, "first party on the right")
			assert.InDelta(t, g.Width-g.Right, a.X+a.W, 1e-9)
		} else {
			assert.Less(t, a.X, b.X)
			assert.Equal(t, g.Left, a.X)
		}
		require.Len(t, a.Lines, 2)
		assert.True(t, a.Lines[0].Bold)
		assert.False(t, a.Lines[1].Bold)
	}
}

func TestTablePlacement(t *testing.T) {
	g := testGeometry()
	g.RTL = true

	tb := layout.Table{
		Columns: []layout.Column{{Title: "Item"}, {Title: "Price", Width: 100}},
		Rows:    [][]string{{"Hosting", "100"}, {"Domain", "20"}},
	}
	out, err := layout.New(g, halfEm).Layout([]layout.Block{tb})
	require.NoError(t, err)
	require.Len(t, out, 1)

	pb := out[0]
	require.Len(t, pb.Rows, 3)
	assert.True(t, pb.Rows[0].Header)
	assert.False(t, pb.Rows[1].Header)
	assert.Greater(t, pb.Rows[0].Cells[0].X, pb.Rows[0].Cells[1].X)
	assert.Equal(t, 100.0, pb.Rows[0].Cells[1].W)
	assert.Equal(t, g.ContentWidth(), pb.W)

	h := 0.0
	for i, r := range pb.Rows {
		if i > 0 {
			assert.Equal(t, pb.Rows[i-1].Y+pb.Rows[i-1].H, r.Y)
		}
		h += r.H
	}
	assert.Equal(t, pb.H, h)
	assert.Equal(t, "Hosting", pb.Rows[1].Cells[0].Lines[0].Text)
	assert.True(t, pb.Rows[0].Cells[0].Lines[0].Bold)
}

func TestKeyValueAndBulletLines(t *testing.T) {
	out, err := layout.New(testGeometry(), halfEm).Layout([]layout.Block{
		layout.KeyValueBox{Pairs: []layout.Pair{{Key: "Phone", Value: "021"}, {Key: "Site", Value: ""}}},
		layout.BulletList{Items: []string{"first", "second"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	kv := out[0]
	require.Len(t, kv.Lines, 2)
	assert.Equal(t, "Phone: 021", kv.Lines[0].Text)
	assert.Equal(t, "Site", kv.Lines[1].Text)
	assert.Equal(t, 2*16.5+12, kv.H)
	assert.Greater(t, kv.Lines[0].Y, kv.Y)

	bl := out[1]
	require.Len(t, bl.Lines, 2)
	assert.Equal(t, layout.Bullet+"first", bl.Lines[0].Text)
	assert.Equal(t, layout.Bullet+"second", bl.Lines[1].Text)
}

func TestLayoutErrors(t *testing.T) {
	_, err := layout.New(testGeometry(), halfEm).Layout([]layout.Block{nil})
	assert.Error(t, err)

	g := testGeometry()
	g.Top = 500
	g.Bottom = 400
	_, err = layout.New(g, halfEm).Layout(nil)
	assert.ErrorIs(t, err, layout.ErrInvalidGeometry)

	_, err = layout.New(testGeometry(), nil).Layout(nil)
	assert.Error(t, err)
}

func TestLayoutDeterministic(t *testing.T) {
	blocks := []layout.Block{
		layout.Paragraph{Text: "قرارداد SSL شماره ۱۲", Style: layout.Title, Align: layout.Center},
		layout.BulletList{Items: []string{"پشتیبانی", "Hosting 12 months"}},
		layout.SignatureBox{Label: "کارفرما", Name: "علی"},
		layout.SignatureBox{Label: "پیمانکار", Name: "شرکت"},
	}
	e := layout.New(layout.A4(), halfEm)
	a, err := e.Layout(blocks)
	require.NoError(t, err)
	b, err := e.Layout(blocks)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
