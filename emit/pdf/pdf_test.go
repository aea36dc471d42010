package pdf_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lvillar/rtldoc/emit"
	"github.com/lvillar/rtldoc/emit/pdf"
	"github.com/lvillar/rtldoc/fontcache"
	"github.com/lvillar/rtldoc/internal/pdftext"
	"github.com/lvillar/rtldoc/layout"
)

var generatedAt = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func meta() emit.Metadata {
	return emit.Metadata{
		Title:       "Sample",
		Creator:     "rtldoc",
		Reference:   "C-12",
		GeneratedAt: generatedAt,
		Geometry:    layout.A4(),
	}
}

func sampleBlocks() []layout.Block {
	return []layout.Block{
		layout.Paragraph{Text: "Service agreement", Style: layout.Title, Align: layout.Center},
		layout.KeyValueBox{Pairs: []layout.Pair{{Key: "Number", Value: "C-12"}}},
		layout.BulletList{Items: []string{"first", "second"}},
		layout.Table{
			Columns: []layout.Column{{Title: "Item"}, {Title: "Price", Width: 80}},
			Rows:    [][]string{{"Hosting", "100"}, {"Domain", "20"}},
		},
		layout.SignatureBox{Label: "Client", Name: "Acme"},
		layout.SignatureBox{Label: "Contractor", Name: "Studio"},
	}
}

func emitWith(t *testing.T, e *pdf.Emitter, blocks []layout.Block) []byte {
	t.Helper()
	m, err := e.Measurer()
	require.NoError(t, err)
	placed, err := layout.New(layout.A4(), m).Layout(blocks)
	require.NoError(t, err)
	data, err := e.Emit(placed, meta())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	return data
}

func TestEmitFallbackFont(t *testing.T) {
	e := pdf.New()
	assert.False(t, e.Embedded())
	assert.Equal(t, emit.ContentTypePDF, e.ContentType())
	assert.Equal(t, ".pdf", e.Extension())

	data := emitWith(t, e, append(sampleBlocks(), layout.Paragraph{Text: "قرارداد"}))
	text, err := pdftext.Text(data)
	require.NoError(t, err)
	for _, want := range []string{"Service agreement", "Number: C-12", "• first", "Hosting", "Price", "Client", "Acme", "قرارداد"} {
		assert.Contains(t, text, want)
	}
}

func TestEmitEmbeddedFont(t *testing.T) {
	regular := &fontcache.Font{Name: "body", Data: goregular.TTF}
	bold := &fontcache.Font{Name: "body-bold", Data: gobold.TTF}
	e := pdf.New(pdf.WithFonts(regular, bold))
	require.True(t, e.Embedded())

	data := emitWith(t, e, sampleBlocks())
	assert.Contains(t, string(data), "/Type0")
	text, err := pdftext.Text(data)
	require.NoError(t, err)
	assert.Contains(t, text, "Service agreement")
	assert.Contains(t, text, "Contractor")
}

func TestEmitBoldFallsBackToRegular(t *testing.T) {
	e := pdf.New(pdf.WithFonts(&fontcache.Font{Data: goregular.TTF}, nil))
	m, err := e.Measurer()
	require.NoError(t, err)
	assert.InDelta(t, m.Width("Title", 12, false), m.Width("Title", 12, true), 1e-9)
	emitWith(t, e, sampleBlocks())
}

func TestEmitIsDeterministic(t *testing.T) {
	e := pdf.New()
	a := emitWith(t, e, sampleBlocks())
	b := emitWith(t, e, sampleBlocks())
	assert.Equal(t, a, b)
}

func TestEmitPages(t *testing.T) {
	blocks := make([]layout.Block, 0, 40)
	for i := 0; i < 40; i++ {
		blocks = append(blocks, layout.Paragraph{Text: strings.Repeat("line ", 30)})
	}
	data := emitWith(t, pdf.New(pdf.WithCompression(false)), blocks)
	pages, err := pdftext.Pages(data)
	require.NoError(t, err)
	assert.Greater(t, len(pages), 1)
}

func TestEmitEmptyDocument(t *testing.T) {
	data, err := pdf.New().Emit(nil, meta())
	require.NoError(t, err)
	pages, err := pdftext.Pages(data)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestEmitInvalidGeometry(t *testing.T) {
	m := meta()
	m.Geometry = layout.Geometry{}
	_, err := pdf.New().Emit(nil, m)
	assert.ErrorIs(t, err, layout.ErrInvalidGeometry)
}

func TestEmitBarcode(t *testing.T) {
	plain := emitWith(t, pdf.New(), sampleBlocks())
	for _, sym := range []pdf.Symbology{pdf.QR, pdf.PDF417} {
		data := emitWith(t, pdf.New(pdf.WithBarcode(pdf.Barcode{Symbology: sym})), sampleBlocks())
		assert.Contains(t, string(data), "/Subtype /Image", "symbology %d", sym)
		assert.Greater(t, len(data), len(plain))
	}
}

func TestEmitLetterhead(t *testing.T) {
	head := fpdf.New("P", "pt", "A4", "")
	head.SetFont("Helvetica", "", 10)
	head.AddPage()
	head.Text(40, 30, "Letterhead")
	var buf bytes.Buffer
	require.NoError(t, head.Output(&buf))

	data := emitWith(t, pdf.New(pdf.WithLetterhead(buf.Bytes())), sampleBlocks())
	assert.Contains(t, string(data), "/Subtype /Form")
}

func TestMeasurer(t *testing.T) {
	m, err := pdf.New().Measurer()
	require.NoError(t, err)
	assert.Zero(t, m.Width("", 12, false))
	narrow := m.Width("iii", 12, false)
	assert.Greater(t, m.Width("WWW", 12, false), narrow)
	assert.InDelta(t, 2*m.Width("abc", 10, false), m.Width("abc", 20, false), 1e-9)
}
