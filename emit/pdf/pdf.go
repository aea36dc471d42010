// Package pdf emits positioned blocks as a PDF with github.com/go-pdf/fpdf.
//
// Every line is drawn at the absolute position chosen by the layout engine;
// fpdf's own flowing and page breaking are switched off. Text is drawn in
// visual order with contextual forms already applied, so the embedded font
// only needs to map code points to glyphs.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/emit"
	"github.com/lvillar/rtldoc/fontcache"
	"github.com/lvillar/rtldoc/layout"
)

const (
	family   = "persian"
	fallback = "Helvetica"
)

// Symbology selects the verification code printed on the first page.
type Symbology int

const (
	NoBarcode Symbology = iota
	QR
	PDF417
)

// Barcode configures the verification code. Its content is the document
// reference from the metadata; documents without one get no code.
type Barcode struct {
	Symbology Symbology
	Size      float64 // width in pt; QR codes are square
}

// Emitter writes PDF documents. It is safe for concurrent use; every Emit
// call builds its own fpdf document.
type Emitter struct {
	regular    *fontcache.Font
	bold       *fontcache.Font
	barcode    Barcode
	letterhead []byte
	compress   bool
	log        *zap.Logger
}

var _ emit.Emitter = (*Emitter)(nil)

// Option configures an Emitter.
type Option func(*Emitter)

// WithFonts embeds regular and bold. A nil bold font reuses regular; a nil
// regular font selects the core Helvetica fallback.
func WithFonts(regular, bold *fontcache.Font) Option {
	return func(e *Emitter) {
		e.regular, e.bold = regular, bold
	}
}

// WithBarcode prints a verification code on the first page.
func WithBarcode(b Barcode) Option {
	return func(e *Emitter) { e.barcode = b }
}

// WithLetterhead draws the first page of pdf behind every page.
func WithLetterhead(pdf []byte) Option {
	return func(e *Emitter) { e.letterhead = pdf }
}

// WithCompression toggles stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(e *Emitter) { e.compress = on }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns a PDF emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{compress: true, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) ContentType() string { return emit.ContentTypePDF }
func (e *Emitter) Extension() string   { return ".pdf" }

// Embedded reports whether text is drawn with an embedded font. Without one
// the emitter falls back to Helvetica and writes text unshaped.
func (e *Emitter) Embedded() bool { return e.regular != nil }

// Measurer returns a text measurer using the fonts of the emitter, so layout
// widths match what is drawn.
func (e *Emitter) Measurer() (*Measurer, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", Size: fpdf.SizeType{Wd: 595.28, Ht: 841.89}})
	name := e.setupFonts(doc)
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("pdf: measurer: %w", err)
	}
	return &Measurer{doc: doc, family: name}, nil
}

// setupFonts registers the embedded fonts and returns the family to draw with.
func (e *Emitter) setupFonts(doc *fpdf.Fpdf) string {
	if e.regular == nil {
		return fallback
	}
	doc.AddUTF8FontFromBytes(family, "", e.regular.Data)
	bold := e.bold
	if bold == nil {
		bold = e.regular
	}
	doc.AddUTF8FontFromBytes(family, "B", bold.Data)
	return family
}

// Emit renders blocks and returns the PDF bytes.
func (e *Emitter) Emit(blocks []layout.PositionedBlock, meta emit.Metadata) (out []byte, err error) {
	// gofpdi and the barcode encoders panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("pdf: %v", r)
		}
	}()

	g := meta.Geometry
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	doc.SetMargins(g.Left, g.Top, g.Right)
	doc.SetAutoPageBreak(false, g.Bottom)
	doc.SetCompression(e.compress)
	doc.SetCatalogSort(true)
	if !meta.GeneratedAt.IsZero() {
		doc.SetCreationDate(meta.GeneratedAt)
		doc.SetModificationDate(meta.GeneratedAt)
	}
	doc.SetTitle(meta.Title, true)
	doc.SetSubject(meta.Subject, true)
	doc.SetAuthor(meta.Author, true)
	doc.SetCreator(meta.Creator, true)
	if len(meta.Keywords) > 0 {
		doc.SetKeywords(strings.Join(meta.Keywords, " "), true)
	}

	d := &drawer{doc: doc, family: e.setupFonts(doc), embedded: e.Embedded(), style: layout.TableStyle()}

	letterhead := -1
	if len(e.letterhead) > 0 {
		letterhead = importLetterhead(doc, e.letterhead)
	}

	pages := emit.ByPage(blocks)
	if len(pages) == 0 {
		pages = append(pages, nil)
	}
	for i, page := range pages {
		doc.AddPage()
		if letterhead >= 0 {
			useLetterhead(doc, letterhead, g)
		}
		for _, b := range page {
			d.block(b)
		}
		if i == 0 {
			e.drawBarcode(doc, meta)
		}
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	e.log.Debug("pdf emitted",
		zap.Int("pages", len(pages)),
		zap.Int("bytes", buf.Len()),
		zap.Bool("embedded_font", d.embedded))
	return buf.Bytes(), nil
}

// Write emits blocks to w.
func (e *Emitter) Write(w io.Writer, blocks []layout.PositionedBlock, meta emit.Metadata) error {
	data, err := e.Emit(blocks, meta)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
