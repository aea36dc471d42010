package pdftext

import (
	"bytes"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// extract collects the strings shown by text operators in a content
// stream. Each text object and each Td, TD or T* ends a word.
func extract(data []byte, composite map[string]bool) string {
	var out strings.Builder
	var inText, twoByte bool
	var lastName string

	show := func(raw []byte) { out.WriteString(decode(raw, twoByte)) }
	space := func() {
		if s := out.String(); s != "" && s[len(s)-1] != ' ' {
			out.WriteByte(' ')
		}
	}

	i := 0
	for i < len(data) {
		for i < len(data) && isWhitespace(data[i]) {
			i++
		}
		if i >= len(data) {
			break
		}

		switch {
		case data[i] == '/':
			j := i + 1
			for j < len(data) && !isWhitespace(data[j]) && !isDelimiter(data[j]) {
				j++
			}
			lastName = string(data[i+1 : j])
			i = j
			continue
		case operator(data, i, "Tf"):
			twoByte = composite[lastName]
			i += 2
			continue
		case operator(data, i, "BT"):
			inText = true
			i += 2
			continue
		case operator(data, i, "ET"):
			inText = false
			space()
			i += 2
			continue
		}

		if !inText {
			switch data[i] {
			case '(':
				_, i = literalString(data, i)
			case '<':
				i = skipAngle(data, i)
			default:
				i++
			}
			continue
		}

		switch {
		case data[i] == '(':
			var s []byte
			s, i = literalString(data, i)
			show(s)
		case data[i] == '<' && (i+1 >= len(data) || data[i+1] != '<'):
			var s []byte
			s, i = hexString(data, i)
			show(s)
		case data[i] == '<':
			i = skipAngle(data, i)
		case operator(data, i, "Td"), operator(data, i, "TD"), operator(data, i, "T*"):
			space()
			i += 2
		default:
			i++
		}
	}
	return strings.TrimSpace(out.String())
}

// operator reports whether the two-byte operator op starts at i.
func operator(data []byte, i int, op string) bool {
	if i+2 > len(data) || string(data[i:i+2]) != op {
		return false
	}
	if i > 0 && !isWhitespace(data[i-1]) && !isDelimiter(data[i-1]) {
		return false
	}
	return i+2 == len(data) || isWhitespace(data[i+2]) || isDelimiter(data[i+2])
}

// decode converts string bytes to text. Composite fonts use two-byte
// Identity codes equal to the code points; simple fonts get UTF-8 when the
// bytes are valid UTF-8 and Latin-1 otherwise.
func decode(raw []byte, twoByte bool) string {
	switch {
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return utf16BE(raw[2:])
	case twoByte:
		return utf16BE(raw)
	case utf8.Valid(raw):
		return string(raw)
	}
	var b strings.Builder
	for _, c := range raw {
		b.WriteRune(rune(c))
	}
	return b.String()
}

func utf16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	u := make([]uint16, len(data)/2)
	for i := range u {
		u[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return string(utf16.Decode(u))
}

// literalString parses a (...) string at pos and returns its bytes and the
// position after the closing parenthesis.
func literalString(data []byte, pos int) ([]byte, int) {
	pos++
	var buf bytes.Buffer
	depth := 1
	for pos < len(data) && depth > 0 {
		b := data[pos]
		pos++
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			if pos >= len(data) {
				break
			}
			esc := data[pos]
			pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r', '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for j := 0; j < 2 && pos < len(data) && data[pos] >= '0' && data[pos] <= '7'; j++ {
						oct = oct*8 + int(data[pos]-'0')
						pos++
					}
					buf.WriteByte(byte(oct))
				} else {
					buf.WriteByte(esc)
				}
			}
		default:
			buf.WriteByte(b)
		}
	}
	return buf.Bytes(), pos
}

func hexString(data []byte, pos int) ([]byte, int) {
	pos++
	var buf bytes.Buffer
	hi := -1
	for pos < len(data) {
		b := data[pos]
		pos++
		if b == '>' {
			break
		}
		v := unhex(b)
		if v < 0 {
			continue
		}
		if hi < 0 {
			hi = v
		} else {
			buf.WriteByte(byte(hi<<4 | v))
			hi = -1
		}
	}
	if hi >= 0 {
		buf.WriteByte(byte(hi << 4))
	}
	return buf.Bytes(), pos
}

func skipAngle(data []byte, pos int) int {
	if pos+1 < len(data) && data[pos+1] == '<' {
		return pos + 2
	}
	for pos < len(data) && data[pos] != '>' {
		pos++
	}
	return pos + 1
}

func unhex(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
