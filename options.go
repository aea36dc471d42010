package rtldoc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/emit/pdf"
	"github.com/lvillar/rtldoc/fontcache"
	"github.com/lvillar/rtldoc/internal/metrics"
	"github.com/lvillar/rtldoc/layout"
)

// Option is a functional option for configuring an Engine via New.
type Option func(*Engine)

// WithLogger sets the logger. Degradations are reported at Warn level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFontCache sets the font cache. Engines sharing a cache share its
// entries; the default is one process-wide cache over DefaultSpecs.
func WithFontCache(c *fontcache.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.fonts = c
		}
	}
}

// WithGeometry sets the page geometry. The default is A4 with RTL flow.
func WithGeometry(g layout.Geometry) Option {
	return func(e *Engine) {
		e.geo = g
	}
}

// WithTypography overrides the font sizes and line leading.
func WithTypography(t layout.Typography) Option {
	return func(e *Engine) {
		e.typo = t
	}
}

// WithCompany merges c over the default company settings.
func WithCompany(c doctpl.Company) Option {
	return func(e *Engine) {
		e.company = doctpl.DefaultCompany().Merge(c)
	}
}

// WithTemplate replaces the built-in template for cfg.Kind.
func WithTemplate(cfg doctpl.TemplateConfig) Option {
	return func(e *Engine) {
		e.templates[cfg.Kind] = cfg
	}
}

// WithMetrics registers the generation collectors on reg. Registering two
// engines on the same registry panics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = metrics.New(reg)
	}
}

// WithTracer sets the tracer for per-stage spans. The default is the
// tracer of the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithBarcode prints a verification code on the first page of PDFs.
func WithBarcode(b pdf.Barcode) Option {
	return func(e *Engine) {
		e.barcode = b
	}
}

// WithLetterhead draws the first page of the given PDF beneath every page
// of generated PDFs.
func WithLetterhead(data []byte) Option {
	return func(e *Engine) {
		e.letterhead = data
	}
}

// WithCompression toggles PDF stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(e *Engine) {
		e.compress = on
	}
}

// WithDocxFont sets the font family named in DOCX output.
func WithDocxFont(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.docxFont = name
		}
	}
}

// WithClock sets the clock read once per generation for the document date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
