// Package emit defines the output backends that turn positioned blocks into
// document bytes.
package emit

import (
	"time"

	"github.com/lvillar/rtldoc/layout"
)

// Content types of the built-in emitters.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Metadata describes the document being emitted.
type Metadata struct {
	Title     string
	Subject   string
	Author    string
	Creator   string
	Keywords  []string
	Language  string // BCP 47 tag, "fa-IR" when empty
	Reference string // stable identifier, printed in the verification code
	// GeneratedAt is written as the creation time. Emitters read no clock.
	GeneratedAt time.Time
	Geometry    layout.Geometry
}

// Lang returns the document language.
func (m Metadata) Lang() string {
	if m.Language == "" {
		return "fa-IR"
	}
	return m.Language
}

// Emitter serializes laid-out blocks. Emit either returns the complete
// document or an error; it never returns partial output.
type Emitter interface {
	Emit(blocks []layout.PositionedBlock, meta Metadata) ([]byte, error)
	ContentType() string
	Extension() string
}

// Fragments returns the first fragment of every block, in input order.
// Flowing emitters use it to recover the blocks the layout engine split.
func Fragments(blocks []layout.PositionedBlock) []layout.PositionedBlock {
	out := make([]layout.PositionedBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Fragment == 0 {
			out = append(out, b)
		}
	}
	return out
}

// ByPage groups blocks by page. The result has one entry per page, starting
// with page 1; pages without blocks are empty.
func ByPage(blocks []layout.PositionedBlock) [][]layout.PositionedBlock {
	pages := make([][]layout.PositionedBlock, layout.Pages(blocks))
	for _, b := range blocks {
		if b.Page >= 1 {
			pages[b.Page-1] = append(pages[b.Page-1], b)
		}
	}
	return pages
}
