// Package fontcache resolves logical font names to TrueType files.
//
// A Cache is built once at startup and shared by every generation. The first
// successful lookup of a name probes its candidate paths in order, validates
// the file and stores the result; later lookups read the stored entry.
// Failed lookups are not remembered, so a font installed later is picked up.
package fontcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/sync/singleflight"
)

// Logical font names used by the emitters.
const (
	Persian     = "persian"
	PersianBold = "persian-bold"
)

var (
	// ErrFontUnavailable is returned when no candidate of a font can be used.
	ErrFontUnavailable = errors.New("fontcache: font unavailable")
	// ErrUnknownFont is returned for a name without a Spec.
	ErrUnknownFont = errors.New("fontcache: unknown font")
)

// Spec describes where a logical font may be found.
type Spec struct {
	Name       string
	Candidates []string // probed in order, relative to the working directory
	Require    []rune   // code points the font must have glyphs for
}

// Font is a loaded, validated font file.
type Font struct {
	Name   string
	Path   string
	Family string
	Glyphs int
	Data   []byte
}

// Cache maps logical names to fonts. Entries are assigned once and never
// replaced. It is safe for concurrent use.
type Cache struct {
	fsys    fs.FS
	specs   map[string]Spec
	entries sync.Map // name -> *Font
	group   singleflight.Group
	probes  atomic.Int64
	log     *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithFS reads candidates from fsys instead of the working directory.
func WithFS(fsys fs.FS) Option {
	return func(c *Cache) { c.fsys = fsys }
}

// WithLogger sets the logger used to report rejected candidates.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a cache for specs. A later spec with the same name replaces
// an earlier one.
func New(specs []Spec, opts ...Option) *Cache {
	c := &Cache{specs: make(map[string]Spec, len(specs)), log: zap.NewNop()}
	for _, s := range specs {
		c.specs[s.Name] = s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Empty returns a cache that knows no fonts. Every lookup fails, which makes
// emitters use their fallback font.
func Empty() *Cache { return New(nil) }

var fontDirs = []string{"fonts", "assets/fonts", "public/fonts", "static/fonts"}

// DefaultSpecs returns the Persian regular and bold fonts searched under the
// usual font directories of the working directory.
func DefaultSpecs() []Spec {
	candidates := func(files ...string) []string {
		var out []string
		for _, dir := range fontDirs {
			for _, f := range files {
				out = append(out, dir+"/"+f)
			}
		}
		return out
	}
	// Shaped text is drawn with presentation forms, so those must be present.
	require := []rune{'ا', 'پ', 'ی', '۱', 'ﺍ', 'ﭘ', 'ﻻ'}
	return []Spec{
		{
			Name:       Persian,
			Candidates: candidates("Vazirmatn-Regular.ttf", "Vazir.ttf", "Vazir-Regular.ttf", "Sahel.ttf"),
			Require:    require,
		},
		{
			Name:       PersianBold,
			Candidates: candidates("Vazirmatn-Bold.ttf", "Vazir-Bold.ttf", "Sahel-Bold.ttf"),
			Require:    require,
		},
	}
}

// Lookup returns the font registered under name, probing its candidates on
// first use. Concurrent first lookups share one probe.
func (c *Cache) Lookup(name string) (*Font, error) {
	if v, ok := c.entries.Load(name); ok {
		return v.(*Font), nil
	}
	spec, ok := c.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		if v, ok := c.entries.Load(name); ok {
			return v, nil
		}
		f, err := c.probe(spec)
		if err != nil {
			return nil, err
		}
		actual, _ := c.entries.LoadOrStore(name, f)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Font), nil
}

// Probes returns how many times candidate lists were probed.
func (c *Cache) Probes() int64 { return c.probes.Load() }

func (c *Cache) probe(spec Spec) (*Font, error) {
	c.probes.Add(1)
	var last error = errors.New("no candidates")
	for _, path := range spec.Candidates {
		data, err := c.readFile(path)
		if err != nil {
			last = err
			continue
		}
		f, err := validate(spec, path, data)
		if err != nil {
			c.log.Debug("font candidate rejected", zap.String("font", spec.Name), zap.String("path", path), zap.Error(err))
			last = err
			continue
		}
		c.log.Info("font resolved", zap.String("font", spec.Name), zap.String("path", path), zap.String("family", f.Family))
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrFontUnavailable, spec.Name, last)
}

func (c *Cache) readFile(path string) ([]byte, error) {
	if c.fsys != nil {
		return fs.ReadFile(c.fsys, path)
	}
	return os.ReadFile(path)
}

func validate(spec Spec, path string, data []byte) (*Font, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var buf sfnt.Buffer
	for _, r := range spec.Require {
		idx, err := sf.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("%s: glyph %U: %w", path, r, err)
		}
		if idx == 0 {
			return nil, fmt.Errorf("%s: no glyph for %U", path, r)
		}
	}
	family, _ := sf.Name(&buf, sfnt.NameIDFamily)
	return &Font{
		Name:   spec.Name,
		Path:   path,
		Family: family,
		Glyphs: sf.NumGlyphs(),
		Data:   data,
	}, nil
}
