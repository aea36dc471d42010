package pdf

import (
	"bytes"
	"io"

	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/barcode"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"github.com/lvillar/rtldoc/emit"
	"github.com/lvillar/rtldoc/layout"
)

const (
	defaultBarcodeSize = 48
	pdf417Columns      = 6
	pdf417Security     = 2
)

// drawBarcode prints the verification code in the top margin of the current
// page, on the end side of the line.
func (e *Emitter) drawBarcode(doc *fpdf.Fpdf, meta emit.Metadata) {
	if e.barcode.Symbology == NoBarcode || meta.Reference == "" {
		return
	}
	g := meta.Geometry
	w := e.barcode.Size
	if w <= 0 {
		w = defaultBarcodeSize
	}

	var key string
	h := w
	switch e.barcode.Symbology {
	case QR:
		key = barcode.RegisterQR(doc, meta.Reference, qr.M, qr.Unicode)
	case PDF417:
		key = barcode.RegisterPdf417(doc, meta.Reference, pdf417Columns, pdf417Security)
		h = w / 3
	default:
		return
	}
	h = min(h, g.Top-4)

	x := g.Left
	if !g.RTL {
		x = g.Width - g.Right - w
	}
	barcode.Barcode(doc, key, x, (g.Top-h)/2, w, h, false)
	e.log.Debug("verification code drawn", zap.String("reference", meta.Reference))
}

func importLetterhead(doc *fpdf.Fpdf, data []byte) int {
	var rs io.ReadSeeker = bytes.NewReader(data)
	return gofpdi.ImportPageFromStream(doc, &rs, 1, "/MediaBox")
}

func useLetterhead(doc *fpdf.Fpdf, tpl int, g layout.Geometry) {
	gofpdi.UseImportedTemplate(doc, tpl, 0, 0, g.Width, g.Height)
}
