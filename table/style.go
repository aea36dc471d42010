// Package table resolves the geometry of simple fixed-column tables: column
// widths, column offsets for either writing direction and row heights driven
// by the tallest wrapped cell. Drawing is left to the emitters.
package table

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// Horizontal returns the sum of the left and right padding.
func (p Padding) Horizontal() float64 { return p.Left + p.Right }

// Vertical returns the sum of the top and bottom padding.
func (p Padding) Vertical() float64 { return p.Top + p.Bottom }

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color RGBColor
}

// AlternateStyle defines alternating body row fills.
type AlternateStyle struct {
	Even RGBColor
	Odd  RGBColor
}

// Style defines the overall appearance of a table.
type Style struct {
	Border        BorderStyle
	HeaderFill    RGBColor
	HeaderText    RGBColor
	AlternateRows *AlternateStyle
	CellPadding   Padding
	MinRowHeight  float64
}

// DefaultStyle returns the style used for document tables.
func DefaultStyle() Style {
	return Style{
		Border:     BorderStyle{Width: 0.5, Color: RGBColor{R: 120, G: 120, B: 120}},
		HeaderFill: RGBColor{R: 230, G: 236, B: 245},
		HeaderText: RGBColor{R: 0, G: 0, B: 0},
		AlternateRows: &AlternateStyle{
			Even: RGBColor{R: 255, G: 255, B: 255},
			Odd:  RGBColor{R: 247, G: 247, B: 247},
		},
		CellPadding:  UniformPadding(4),
		MinRowHeight: 14,
	}
}

// RowFill returns the background of a row. bodyIdx is the zero-based index
// among data rows; header rows use the header fill.
func (s Style) RowFill(bodyIdx int, header bool) (RGBColor, bool) {
	switch {
	case header:
		return s.HeaderFill, true
	case s.AlternateRows == nil:
		return RGBColor{}, false
	case bodyIdx%2 == 0:
		return s.AlternateRows.Even, true
	default:
		return s.AlternateRows.Odd, true
	}
}
