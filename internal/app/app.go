// Package app builds the engine and record source of the rtldoc binaries
// from their configuration.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lvillar/rtldoc"
	"github.com/lvillar/rtldoc/config"
	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/emit/pdf"
	"github.com/lvillar/rtldoc/fontcache"
	"github.com/lvillar/rtldoc/record"
	"github.com/lvillar/rtldoc/store"
)

// Barcode sizes in pt.
const (
	qrSize     = 56
	pdf417Size = 150
)

// FontSpecs returns the built-in font specs with the configured candidates
// in place of the default search paths.
func FontSpecs(cfg config.Fonts) []fontcache.Spec {
	specs := fontcache.DefaultSpecs()
	for i := range specs {
		switch {
		case specs[i].Name == fontcache.Persian && len(cfg.Regular) > 0:
			specs[i].Candidates = cfg.Regular
		case specs[i].Name == fontcache.PersianBold && len(cfg.Bold) > 0:
			specs[i].Candidates = cfg.Bold
		}
	}
	return specs
}

// Barcode maps the configured symbology name to a barcode setting.
func Barcode(name string) (pdf.Barcode, error) {
	switch name {
	case "":
		return pdf.Barcode{}, nil
	case "qr":
		return pdf.Barcode{Symbology: pdf.QR, Size: qrSize}, nil
	case "pdf417":
		return pdf.Barcode{Symbology: pdf.PDF417, Size: pdf417Size}, nil
	}
	return pdf.Barcode{}, fmt.Errorf("app: barcode %q not supported", name)
}

// NewEngine returns an engine configured by cfg. A nil reg leaves the
// metrics unregistered.
func NewEngine(cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*rtldoc.Engine, error) {
	bc, err := Barcode(cfg.PDF.Barcode)
	if err != nil {
		return nil, err
	}
	opts := []rtldoc.Option{
		rtldoc.WithLogger(log),
		rtldoc.WithFontCache(fontcache.New(FontSpecs(cfg.Fonts), fontcache.WithLogger(log))),
		rtldoc.WithGeometry(cfg.Page.Geometry()),
		rtldoc.WithCompany(cfg.Company),
		rtldoc.WithBarcode(bc),
		rtldoc.WithCompression(cfg.PDF.Compress),
	}
	if reg != nil {
		opts = append(opts, rtldoc.WithMetrics(reg))
	}
	if cfg.PDF.Letterhead != "" {
		data, err := os.ReadFile(cfg.PDF.Letterhead)
		if err != nil {
			return nil, fmt.Errorf("app: letterhead: %w", err)
		}
		opts = append(opts, rtldoc.WithLetterhead(data))
	}
	for kind, path := range map[record.Kind]string{
		record.KindContract: cfg.Template.Contract,
		record.KindEstimate: cfg.Template.Estimate,
	} {
		if path == "" {
			continue
		}
		tpl, err := LoadTemplate(kind, path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rtldoc.WithTemplate(tpl))
	}
	return rtldoc.New(opts...), nil
}

// LoadTemplate reads a YAML or JSON template for kind. A template without
// a kind takes kind; one with another kind is an error.
func LoadTemplate(kind record.Kind, path string) (doctpl.TemplateConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return doctpl.TemplateConfig{}, fmt.Errorf("app: template: %w", err)
	}
	defer f.Close()

	tpl, err := doctpl.Load(f)
	if err != nil {
		return doctpl.TemplateConfig{}, fmt.Errorf("app: template %s: %w", path, err)
	}
	switch tpl.Kind {
	case "":
		tpl.Kind = kind
	case kind:
	default:
		return doctpl.TemplateConfig{}, fmt.Errorf("app: template %s is for %s, not %s", path, tpl.Kind, kind)
	}
	return tpl, nil
}

// NewSource returns the record source selected by cfg and a function
// releasing it: PostgreSQL when a DSN is set, the JSON directory otherwise.
func NewSource(ctx context.Context, cfg config.Records, log *zap.Logger) (store.Source, func(), error) {
	if cfg.DSN == "" {
		log.Debug("reading records from directory", zap.String("dir", cfg.Dir))
		return store.Dir{Root: cfg.Dir}, func() {}, nil
	}
	pool, err := store.NewPool(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Debug("reading records from postgres")
	return pg, pool.Close, nil
}
