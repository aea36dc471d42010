// Package pdftext extracts the text drawn by simple PDF files, such as those
// written by fpdf. It scans object bodies without consulting the
// cross-reference table, inflates FlateDecode content streams and decodes
// Identity-H composite fonts. It is not a general PDF reader.
package pdftext

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNotPDF is returned for input without a PDF header.
var ErrNotPDF = errors.New("pdftext: not a PDF")

var (
	objRe      = regexp.MustCompile(`(?s)(\d+)\s+\d+\s+obj\b(.*?)\bendobj`)
	pageRe     = regexp.MustCompile(`/Type\s*/Page\b`)
	kidsRe     = regexp.MustCompile(`/Kids\s*\[([^\]]*)\]`)
	refRe      = regexp.MustCompile(`(\d+)\s+\d+\s+R`)
	contentsRe = regexp.MustCompile(`/Contents\s*(?:(\d+)\s+\d+\s+R|\[([^\]]*)\])`)
	fontDictRe = regexp.MustCompile(`(?s)/Font\s*<<(.*?)>>`)
	fontRefRe  = regexp.MustCompile(`/([^\s/<>\[\]()]+)\s+(\d+)\s+\d+\s+R`)
	type0Re    = regexp.MustCompile(`/Subtype\s*/Type0\b`)
	lengthRe   = regexp.MustCompile(`/Length\s+(\d+)(\s+\d+\s+R)?`)
)

type object struct {
	dict   []byte
	stream []byte // raw, still encoded
}

// document is the parsed object table of a PDF.
type document struct {
	objects   map[int]object
	composite map[string]bool // font resource names using two-byte codes
}

func parse(data []byte) (*document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	doc := &document{objects: make(map[int]object), composite: make(map[string]bool)}
	for _, m := range objRe.FindAllSubmatchIndex(data, -1) {
		num, err := strconv.Atoi(string(data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		doc.objects[num] = splitStream(data[m[4]:m[5]])
	}

	for _, o := range doc.objects {
		for _, fd := range fontDictRe.FindAllSubmatch(o.dict, -1) {
			for _, ref := range fontRefRe.FindAllSubmatch(fd[1], -1) {
				n, _ := strconv.Atoi(string(ref[2]))
				if font, ok := doc.objects[n]; ok && type0Re.Match(font.dict) {
					doc.composite[string(ref[1])] = true
				}
			}
		}
	}
	return doc, nil
}

// splitStream separates an object body into its dictionary and stream data.
func splitStream(body []byte) object {
	i := bytes.Index(body, []byte("stream"))
	if i < 0 {
		return object{dict: body}
	}
	o := object{dict: body[:i]}
	rest := body[i+len("stream"):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	if m := lengthRe.FindSubmatch(o.dict); m != nil && m[2] == nil {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n <= len(rest) {
			o.stream = rest[:n]
			return o
		}
	}
	if j := bytes.LastIndex(rest, []byte("endstream")); j >= 0 {
		rest = rest[:j]
	}
	o.stream = bytes.TrimRight(rest, "\r\n")
	return o
}

// pages returns the page object numbers in document order.
func (d *document) pages() []int {
	for _, o := range d.objects {
		if !bytes.Contains(o.dict, []byte("/Pages")) {
			continue
		}
		if m := kidsRe.FindSubmatch(o.dict); m != nil {
			var out []int
			for _, r := range refRe.FindAllSubmatch(m[1], -1) {
				n, _ := strconv.Atoi(string(r[1]))
				out = append(out, n)
			}
			return out
		}
	}
	var out []int
	for n, o := range d.objects {
		if pageRe.Match(o.dict) {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

func (d *document) contents(page int) ([]byte, error) {
	m := contentsRe.FindSubmatch(d.objects[page].dict)
	if m == nil {
		return nil, nil
	}
	var refs []int
	if m[1] != nil {
		n, _ := strconv.Atoi(string(m[1]))
		refs = append(refs, n)
	} else {
		for _, r := range refRe.FindAllSubmatch(m[2], -1) {
			n, _ := strconv.Atoi(string(r[1]))
			refs = append(refs, n)
		}
	}

	var buf bytes.Buffer
	for _, n := range refs {
		o, ok := d.objects[n]
		if !ok {
			return nil, fmt.Errorf("pdftext: page %d: missing content object %d", page, n)
		}
		data, err := decodeStream(o)
		if err != nil {
			return nil, fmt.Errorf("pdftext: page %d: %w", page, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func decodeStream(o object) ([]byte, error) {
	if !bytes.Contains(o.dict, []byte("/FlateDecode")) {
		return o.stream, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(o.stream))
	if err != nil {
		return nil, fmt.Errorf("zlib init: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return buf.Bytes(), nil
}

// Pages returns the text of every page.
func Pages(data []byte) ([]string, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range doc.pages() {
		content, err := doc.contents(p)
		if err != nil {
			return nil, err
		}
		out = append(out, extract(content, doc.composite))
	}
	return out, nil
}

// Text returns the text of all pages separated by newlines.
func Text(data []byte) (string, error) {
	pages, err := Pages(data)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}
