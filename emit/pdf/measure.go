package pdf

import (
	"sync"

	"github.com/go-pdf/fpdf"
)

// Measurer reports string widths in pt with the fonts of an Emitter. An fpdf
// document is not safe for concurrent use, so calls are serialized.
type Measurer struct {
	mu     sync.Mutex
	doc    *fpdf.Fpdf
	family string
}

// Width implements layout.Measurer.
func (m *Measurer) Width(s string, size float64, bold bool) float64 {
	if s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.SetFont(m.family, fontStyle(bold), size)
	return m.doc.GetStringWidth(s)
}
