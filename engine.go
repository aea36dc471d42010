// Package rtldoc generates Persian business documents (contracts and
// estimates) as PDF and DOCX from one shared layout.
//
// A generation runs the same pipeline for every format: the record is
// rendered into blocks by its template, the blocks are shaped and paginated
// by the layout engine, and the positioned blocks are handed to the emitter
// of the requested format. Missing fonts, unshapeable text and oversize
// blocks degrade the output but never fail it.
//
// Example:
//
//	eng := rtldoc.New(rtldoc.WithLogger(log))
//	res, err := eng.Generate(ctx, contract, rtldoc.FormatPDF)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Filename, res.Data, 0o644)
package rtldoc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/emit"
	"github.com/lvillar/rtldoc/emit/docx"
	"github.com/lvillar/rtldoc/emit/pdf"
	"github.com/lvillar/rtldoc/fontcache"
	"github.com/lvillar/rtldoc/internal/metrics"
	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/record"
	"github.com/lvillar/rtldoc/rtl"
	"github.com/lvillar/rtldoc/store"
)

// Format is an output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat validates s as an output format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatPDF, FormatDOCX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

const (
	creator    = "rtldoc"
	tracerName = "github.com/lvillar/rtldoc"
)

// Result is a generated document.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
	Pages       int
	// RequestID identifies the generation in logs.
	RequestID string
}

var defaultFonts = sync.OnceValue(func() *fontcache.Cache {
	return fontcache.New(fontcache.DefaultSpecs())
})

// Engine generates documents. It holds no per-request state and is safe
// for concurrent use; only the font cache is shared between calls.
type Engine struct {
	fonts      *fontcache.Cache
	geo        layout.Geometry
	typo       layout.Typography
	company    doctpl.Company
	templates  map[record.Kind]doctpl.TemplateConfig
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	log        *zap.Logger
	barcode    pdf.Barcode
	letterhead []byte
	compress   bool
	docxFont   string
	now        func() time.Time
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		geo:       layout.A4(),
		typo:      layout.DefaultTypography(),
		company:   doctpl.DefaultCompany(),
		templates: make(map[record.Kind]doctpl.TemplateConfig),
		log:       zap.NewNop(),
		compress:  true,
		docxFont:  docx.DefaultFont,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fonts == nil {
		e.fonts = defaultFonts()
	}
	if e.metrics == nil {
		e.metrics = metrics.New(nil)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	return e
}

// Template returns the template used for kind.
func (e *Engine) Template(kind record.Kind) (doctpl.TemplateConfig, error) {
	if cfg, ok := e.templates[kind]; ok {
		return cfg, nil
	}
	return doctpl.Builtin(kind)
}

// GenerateByID loads a record from src and generates it. A record src does
// not have fails with ErrMissingRecord before any generation work.
func (e *Engine) GenerateByID(ctx context.Context, src store.Source, kind record.Kind, id string, format Format) (*Result, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, newGenError("generate", err)
	}
	rec, err := src.Load(ctx, kind, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, newGenError("load", fmt.Errorf("%w: %w", ErrMissingRecord, err))
	case err != nil:
		return nil, newGenError("load", err)
	}
	return e.Generate(ctx, rec, format)
}

// Generate renders rec in the given format. ctx carries tracing only; a
// generation is not cancelled once started.
func (e *Engine) Generate(ctx context.Context, rec record.Record, format Format) (res *Result, err error) {
	format, err = ParseFormat(string(format))
	if err != nil {
		return nil, newGenError("generate", err)
	}
	if isNil(rec) {
		return nil, newGenError("generate", ErrMissingRecord)
	}

	start := time.Now()
	reqID := uuid.NewString()
	kind := rec.Kind()
	log := e.log.With(
		zap.String("request_id", reqID),
		zap.String("document.kind", string(kind)),
		zap.String("document.number", rec.DocumentNumber()),
		zap.String("format", string(format)),
	)

	ctx, span := e.tracer.Start(ctx, "rtldoc.Generate", trace.WithAttributes(
		attribute.String("rtldoc.request_id", reqID),
		attribute.String("document.kind", string(kind)),
		attribute.String("format", string(format)),
	))
	pages := 0
	defer func() {
		size := 0
		if res != nil {
			size = len(res.Data)
		}
		e.metrics.ObserveGeneration(string(kind), string(format), err, time.Since(start), size, pages)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error("document generation failed", zap.Error(err))
		} else {
			span.SetAttributes(attribute.Int("pages", pages))
		}
		span.End()
	}()

	generatedAt := e.now()
	blocks, err := e.render(ctx, rec, generatedAt)
	if err != nil {
		return nil, err
	}

	em, m, err := e.emitter(format, log)
	if err != nil {
		return nil, err
	}

	placed, err := e.layout(ctx, blocks, m, log)
	if err != nil {
		return nil, err
	}
	pages = max(1, layout.Pages(placed))

	meta := emit.Metadata{
		Title:       title(blocks),
		Subject:     string(kind),
		Author:      e.company.Name,
		Creator:     creator,
		Keywords:    keywords(rec),
		Reference:   reference(rec),
		GeneratedAt: generatedAt,
		Geometry:    e.geo,
	}
	_, emitSpan := e.tracer.Start(ctx, "rtldoc.emit")
	data, err := em.Emit(placed, meta)
	emitSpan.End()
	if err != nil {
		return nil, newGenError("emit", fmt.Errorf("%w: %w", ErrEmitterFailure, err))
	}

	log.Info("document generated",
		zap.Int("pages", pages),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return &Result{
		Data:        data,
		Filename:    filename(rec) + em.Extension(),
		ContentType: em.ContentType(),
		Pages:       pages,
		RequestID:   reqID,
	}, nil
}

func (e *Engine) render(ctx context.Context, rec record.Record, at time.Time) ([]layout.Block, error) {
	_, span := e.tracer.Start(ctx, "rtldoc.render")
	defer span.End()

	cfg, err := e.Template(rec.Kind())
	if err != nil {
		return nil, newGenError("render", err)
	}
	blocks, err := doctpl.Render(cfg, doctpl.Env{Record: rec, Company: e.company, GeneratedAt: at})
	if err != nil {
		return nil, newGenError("render", err)
	}
	span.SetAttributes(attribute.Int("blocks", len(blocks)))
	return blocks, nil
}

func (e *Engine) layout(ctx context.Context, blocks []layout.Block, m layout.Measurer, log *zap.Logger) ([]layout.PositionedBlock, error) {
	_, span := e.tracer.Start(ctx, "rtldoc.layout")
	defer span.End()

	shaper := rtl.NewShaper(
		rtl.WithLogger(log),
		rtl.WithDegradedHook(func(string) { e.metrics.Degraded(metrics.ShapingDegraded) }),
	)
	eng := layout.New(e.geo, m,
		layout.WithLogger(log),
		layout.WithTypography(e.typo),
		layout.WithShaper(shaper),
		layout.WithOverflowHook(func(int) { e.metrics.Degraded(metrics.LayoutOverflow) }),
	)
	placed, err := eng.Layout(blocks)
	if err != nil {
		return nil, newGenError("layout", err)
	}
	return placed, nil
}

// emitter returns the emitter for format and the measurer the layout uses.
// Both formats are measured with the PDF fonts so they paginate alike.
func (e *Engine) emitter(format Format, log *zap.Logger) (emit.Emitter, layout.Measurer, error) {
	regular, bold := e.lookupFonts(format, log)
	p := pdf.New(
		pdf.WithFonts(regular, bold),
		pdf.WithBarcode(e.barcode),
		pdf.WithLetterhead(e.letterhead),
		pdf.WithCompression(e.compress),
		pdf.WithLogger(log),
	)
	m, err := p.Measurer()
	if err != nil {
		return nil, nil, newGenError("emit", fmt.Errorf("%w: %w", ErrEmitterFailure, err))
	}
	if format == FormatDOCX {
		return docx.New(
			docx.WithFont(e.docxFont),
			docx.WithTypography(e.typo),
			docx.WithLogger(log),
		), m, nil
	}
	return p, m, nil
}

// lookupFonts resolves the embedded fonts. A missing regular font degrades
// the PDF to the core fallback font; a missing bold font reuses the regular.
// DOCX embeds no font, so for it a missing font only affects measurement.
func (e *Engine) lookupFonts(format Format, log *zap.Logger) (regular, bold *fontcache.Font) {
	regular, err := e.fonts.Lookup(fontcache.Persian)
	if err != nil {
		if format != FormatPDF {
			log.Debug("font unavailable, measuring with fallback font",
				zap.String("font", fontcache.Persian), zap.Error(err))
			return nil, nil
		}
		log.Warn("font unavailable, using fallback font",
			zap.String("font", fontcache.Persian), zap.Error(err))
		e.metrics.Degraded(metrics.ResourceDegraded)
		return nil, nil
	}
	bold, err = e.fonts.Lookup(fontcache.PersianBold)
	if err != nil {
		log.Debug("bold font unavailable, using regular",
			zap.String("font", fontcache.PersianBold), zap.Error(err))
		bold = nil
	}
	return regular, bold
}

// isNil reports whether r is nil or a typed nil pointer.
func isNil(r record.Record) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *record.Contract:
		return v == nil
	case *record.Estimate:
		return v == nil
	}
	return false
}

func title(blocks []layout.Block) string {
	for _, b := range blocks {
		if p, ok := b.(layout.Paragraph); ok && p.Style == layout.Title {
			return p.Text
		}
	}
	return ""
}

func keywords(rec record.Record) []string {
	kw := []string{string(rec.Kind())}
	if n := rec.DocumentNumber(); n != "" {
		kw = append(kw, n)
	}
	return kw
}

// reference returns the verification code content: the document number,
// else the record id. A record with neither gets no code.
func reference(rec record.Record) string {
	if n := rec.DocumentNumber(); n != "" {
		return string(rec.Kind()) + ":" + n
	}
	var id string
	switch v := rec.(type) {
	case *record.Contract:
		id = v.ID
	case *record.Estimate:
		id = v.ID
	}
	if id == "" {
		return ""
	}
	return string(rec.Kind()) + "#" + id
}

// filename returns a file name stem for rec, e.g. "contract-C-12".
func filename(rec record.Record) string {
	stem := string(rec.Kind())
	n := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		}
		return '-'
	}, strings.TrimSpace(rec.DocumentNumber()))
	if n = strings.Trim(n, "-."); n != "" {
		stem += "-" + n
	}
	return stem
}
