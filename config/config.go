// Package config loads the process configuration of the rtldoc binaries:
// defaults, then a YAML file, then RTLDOC_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/layout"
)

// Config is the process configuration.
type Config struct {
	Log      Log            `yaml:"log"`
	Page     Page           `yaml:"page"`
	Fonts    Fonts          `yaml:"fonts"`
	PDF      PDF            `yaml:"pdf"`
	Company  doctpl.Company `yaml:"company"`
	Records  Records        `yaml:"records"`
	Output   Output         `yaml:"output"`
	Template Templates      `yaml:"templates"`
}

type Log struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Page is the page geometry in pt.
type Page struct {
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Margin  float64 `yaml:"margin"`
	Spacing float64 `yaml:"spacing"`
	RTL     bool    `yaml:"rtl"`
}

// Geometry returns the layout geometry of the page.
func (p Page) Geometry() layout.Geometry {
	return layout.Geometry{
		Width: p.Width, Height: p.Height,
		Top: p.Margin, Bottom: p.Margin, Left: p.Margin, Right: p.Margin,
		Spacing: p.Spacing,
		RTL:     p.RTL,
	}
}

// Fonts lists candidate font files. Empty lists use the built-in search paths.
type Fonts struct {
	Regular []string `yaml:"regular"`
	Bold    []string `yaml:"bold"`
}

type PDF struct {
	Barcode    string `yaml:"barcode"` // "", "qr" or "pdf417"
	Letterhead string `yaml:"letterhead"`
	Compress   bool   `yaml:"compress"`
}

// Records selects the record source: a PostgreSQL DSN or a JSON directory.
type Records struct {
	DSN string `yaml:"dsn"`
	Dir string `yaml:"dir"`
}

type Output struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// Templates maps document kinds to template files overriding the built-ins.
type Templates struct {
	Contract string `yaml:"contract"`
	Estimate string `yaml:"estimate"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	g := layout.A4()
	return Config{
		Log:     Log{Level: "info", Encoding: "json"},
		Page:    Page{Width: g.Width, Height: g.Height, Margin: g.Top, Spacing: g.Spacing, RTL: g.RTL},
		PDF:     PDF{Compress: true},
		Company: doctpl.DefaultCompany(),
		Records: Records{Dir: "records"},
		Output:  Output{Dir: ".", Format: "pdf"},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := Decode(bytes.NewReader(data), &cfg); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode reads YAML into cfg. Fields absent from the document keep their
// current values; unknown fields are an error.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with RTLDOC_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"RTLDOC_LOG_LEVEL":       &cfg.Log.Level,
		"RTLDOC_LOG_ENCODING":    &cfg.Log.Encoding,
		"RTLDOC_PDF_BARCODE":     &cfg.PDF.Barcode,
		"RTLDOC_PDF_LETTERHEAD":  &cfg.PDF.Letterhead,
		"RTLDOC_RECORDS_DSN":     &cfg.Records.DSN,
		"RTLDOC_RECORDS_DIR":     &cfg.Records.Dir,
		"RTLDOC_OUTPUT_DIR":      &cfg.Output.Dir,
		"RTLDOC_OUTPUT_FORMAT":   &cfg.Output.Format,
		"RTLDOC_COMPANY_NAME":    &cfg.Company.Name,
		"RTLDOC_COMPANY_PHONE":   &cfg.Company.Phone,
		"RTLDOC_COMPANY_ADDRESS": &cfg.Company.Address,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	lists := map[string]*[]string{
		"RTLDOC_FONTS_REGULAR": &cfg.Fonts.Regular,
		"RTLDOC_FONTS_BOLD":    &cfg.Fonts.Bold,
	}
	for key, dst := range lists {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}

	bools := map[string]*bool{
		"RTLDOC_PAGE_RTL":     &cfg.Page.RTL,
		"RTLDOC_PDF_COMPRESS": &cfg.PDF.Compress,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == os.PathListSeparator }) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the configuration for values no component accepts.
func (c Config) Validate() error {
	if err := c.Page.Geometry().Validate(); err != nil {
		return fmt.Errorf("config: page: %w", err)
	}
	switch c.Output.Format {
	case "pdf", "docx":
	default:
		return fmt.Errorf("config: output format %q not supported", c.Output.Format)
	}
	switch c.PDF.Barcode {
	case "", "qr", "pdf417":
	default:
		return fmt.Errorf("config: barcode %q not supported", c.PDF.Barcode)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("config: log encoding %q not supported", c.Log.Encoding)
	}
	if strings.TrimSpace(c.Company.Name) == "" {
		return errors.New("config: company name is empty")
	}
	return nil
}
