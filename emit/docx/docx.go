// Package docx emits positioned blocks as a WordprocessingML (.docx) file.
//
// A DOCX document flows: the word processor paginates it again, so only the
// block structure survives, not the positions. Paragraph fragments are
// merged back into their paragraph; right-to-left text is marked with
// w:bidi on paragraphs and w:rtl on runs and stays in logical order.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/emit"
	"github.com/lvillar/rtldoc/layout"
)

// DefaultFont is the font family the document asks the word processor for.
const DefaultFont = "Vazirmatn"

// zipEpoch is the earliest time a zip header can carry.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Emitter writes DOCX documents. It is safe for concurrent use.
type Emitter struct {
	font string
	typo layout.Typography
	log  *zap.Logger
}

var _ emit.Emitter = (*Emitter)(nil)

// Option configures an Emitter.
type Option func(*Emitter)

// WithFont sets the font family named in the document styles.
func WithFont(name string) Option {
	return func(e *Emitter) {
		if name != "" {
			e.font = name
		}
	}
}

// WithTypography sets the font sizes. It should match the layout engine.
func WithTypography(t layout.Typography) Option {
	return func(e *Emitter) { e.typo = t }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns a DOCX emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{font: DefaultFont, typo: layout.DefaultTypography(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) ContentType() string { return emit.ContentTypeDOCX }
func (e *Emitter) Extension() string   { return ".docx" }

// Emit renders blocks and returns the zipped package.
func (e *Emitter) Emit(blocks []layout.PositionedBlock, meta emit.Metadata) ([]byte, error) {
	g := meta.Geometry
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}
	body := &body{typo: e.typo, rtl: g.RTL, log: e.log}
	body.blocks(emit.Fragments(blocks))
	body.section(g)

	core, err := coreXML(meta)
	if err != nil {
		return nil, fmt.Errorf("docx: core properties: %w", err)
	}

	modified := meta.GeneratedAt.UTC()
	if modified.Before(zipEpoch) {
		modified = zipEpoch
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"docProps/core.xml", core},
		{"docProps/app.xml", []byte(appXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", stylesXML(e.font, e.typo, meta.Lang())},
		{"word/settings.xml", []byte(settingsXML)},
		{"word/document.xml", documentXML(body.Bytes())},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("docx: %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docx: %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}
	e.log.Debug("docx emitted", zap.Int("blocks", len(blocks)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// coreProperties is docProps/core.xml.
type coreProperties struct {
	XMLName    xml.Name `xml:"cp:coreProperties"`
	CP         string   `xml:"xmlns:cp,attr"`
	DC         string   `xml:"xmlns:dc,attr"`
	DCTerms    string   `xml:"xmlns:dcterms,attr"`
	XSI        string   `xml:"xmlns:xsi,attr"`
	Title      string   `xml:"dc:title,omitempty"`
	Subject    string   `xml:"dc:subject,omitempty"`
	Creator    string   `xml:"dc:creator,omitempty"`
	Keywords   string   `xml:"cp:keywords,omitempty"`
	Identifier string   `xml:"dc:identifier,omitempty"`
	Language   string   `xml:"dc:language,omitempty"`
	Created    *w3cDate `xml:"dcterms:created,omitempty"`
	Modified   *w3cDate `xml:"dcterms:modified,omitempty"`
}

type w3cDate struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

func coreXML(meta emit.Metadata) ([]byte, error) {
	cp := coreProperties{
		CP:         "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:         "http://purl.org/dc/elements/1.1/",
		DCTerms:    "http://purl.org/dc/terms/",
		XSI:        "http://www.w3.org/2001/XMLSchema-instance",
		Title:      meta.Title,
		Subject:    meta.Subject,
		Creator:    meta.Author,
		Identifier: meta.Reference,
		Language:   meta.Lang(),
	}
	for i, k := range meta.Keywords {
		if i > 0 {
			cp.Keywords += ", "
		}
		cp.Keywords += k
	}
	if !meta.GeneratedAt.IsZero() {
		d := &w3cDate{Type: "dcterms:W3CDTF", Value: meta.GeneratedAt.UTC().Format(time.RFC3339)}
		cp.Created, cp.Modified = d, d
	}
	out, err := xml.Marshal(cp)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), out...), nil
}
