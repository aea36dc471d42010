// Package layout positions content blocks on fixed-size pages.
//
// The engine walks the blocks in order with a single cursor (page, y). A
// block that does not fit below the cursor moves to the top of the next page;
// paragraphs are the only blocks that split, line by line. All coordinates are
// absolute points with the origin at the top-left corner of the page.
package layout

import (
	"errors"
	"fmt"
)

// DefaultBlockSpacing is the vertical gap A4 puts between consecutive blocks.
const DefaultBlockSpacing = 8

// Geometry describes the page size and margins in points.
type Geometry struct {
	Width, Height            float64
	Top, Bottom, Left, Right float64
	// Spacing is added below every placed block.
	Spacing float64
	// RTL makes the page right-to-left: Start alignment falls back to the
	// right edge, table columns and signature rows run from the right.
	RTL bool
}

// A4 returns a portrait A4 page with 20mm margins for right-to-left documents.
func A4() Geometry {
	return Geometry{
		Width:   595.28,
		Height:  841.89,
		Top:     56.69,
		Bottom:  56.69,
		Left:    56.69,
		Right:   56.69,
		Spacing: DefaultBlockSpacing,
		RTL:     true,
	}
}

// ContentWidth returns the width between the left and right margins.
func (g Geometry) ContentWidth() float64 { return g.Width - g.Left - g.Right }

// Usable returns the printable height of one page.
func (g Geometry) Usable() float64 { return g.Height - g.Top - g.Bottom }

// Limit returns the lowest y a block may reach on a page.
func (g Geometry) Limit() float64 { return g.Height - g.Bottom }

// ErrInvalidGeometry is returned for pages without printable area.
var ErrInvalidGeometry = errors.New("layout: invalid geometry")

// Validate checks that the page has a printable area.
func (g Geometry) Validate() error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("%w: page size %gx%g", ErrInvalidGeometry, g.Width, g.Height)
	case g.Top < 0 || g.Bottom < 0 || g.Left < 0 || g.Right < 0:
		return fmt.Errorf("%w: negative margin", ErrInvalidGeometry)
	case g.Usable() <= 0:
		return fmt.Errorf("%w: no vertical space between margins", ErrInvalidGeometry)
	case g.ContentWidth() <= 0:
		return fmt.Errorf("%w: no horizontal space between margins", ErrInvalidGeometry)
	case g.Spacing < 0:
		return fmt.Errorf("%w: negative spacing", ErrInvalidGeometry)
	}
	return nil
}

// Style selects the font size and weight of text.
type Style uint8

const (
	Body Style = iota
	Title
	Heading
	Small
)

// Align is the horizontal alignment of a line.
type Align uint8

const (
	// Start aligns to the right edge for right-to-left lines and to the
	// left edge otherwise.
	Start Align = iota
	Left
	Right
	Center
)

// Typography holds font sizes in points and the line height factor.
type Typography struct {
	Body, Title, Heading, Small float64
	Leading                     float64
}

// DefaultTypography returns the sizes used by the built-in templates.
func DefaultTypography() Typography {
	return Typography{Body: 11, Title: 16, Heading: 12.5, Small: 9, Leading: 1.5}
}

// Size returns the font size of s.
func (t Typography) Size(s Style) float64 {
	switch s {
	case Title:
		return t.Title
	case Heading:
		return t.Heading
	case Small:
		return t.Small
	}
	return t.Body
}

// Bold reports whether s is drawn in the bold face.
func (t Typography) Bold(s Style) bool { return s == Title || s == Heading }

// LineHeight returns the height of one line of s.
func (t Typography) LineHeight(s Style) float64 { return t.Size(s) * t.Leading }

// Measurer reports the advance width of text in points. Implementations
// measure the string as given; callers pass text with contextual forms
// already applied.
type Measurer interface {
	Width(s string, size float64, bold bool) float64
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(s string, size float64, bold bool) float64

// Width calls f(s, size, bold).
func (f MeasurerFunc) Width(s string, size float64, bold bool) float64 { return f(s, size, bold) }
