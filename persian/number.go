package persian

import (
	"math"
	"strconv"
	"strings"
)

// Currency is an ISO-like currency code understood by FormatCurrency.
type Currency string

const (
	Toman  Currency = "IRT"
	Rial   Currency = "IRR"
	Dollar Currency = "USD"
	Euro   Currency = "EUR"
)

var currencyLabels = map[Currency]string{
	Toman:  "تومان",
	Rial:   "ریال",
	Dollar: "دلار",
	Euro:   "یورو",
}

// Label returns the Persian label of c. Unknown codes are returned verbatim.
func (c Currency) Label() string {
	if l, ok := currencyLabels[c]; ok {
		return l
	}
	return string(c)
}

const (
	latinGroupSep   = ','
	persianGroupSep = '٬' // U+066C ARABIC THOUSANDS SEPARATOR
)

var digitReplacer = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

var latinReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// Digits replaces ASCII digits in s with Extended Arabic-Indic (Persian) digits.
func Digits(s string) string {
	return digitReplacer.Replace(s)
}

// LatinDigits replaces Persian and Arabic-Indic digits in s with ASCII digits.
func LatinDigits(s string) string {
	return latinReplacer.Replace(s)
}

// FormatNumber groups n by thousands. With persian set the digits are
// transliterated and the Arabic thousands separator is used.
func FormatNumber(n int64, persian bool) string {
	sep := latinGroupSep
	if persian {
		sep = persianGroupSep
	}
	s := group(strconv.FormatUint(abs(n), 10), sep)
	if n < 0 {
		s = "-" + s
	}
	if persian {
		s = Digits(s)
	}
	return s
}

// FormatFloat formats v with the given number of decimals and a grouped
// integer part. Used for quantities, which may be fractional.
func FormatFloat(v float64, decimals int, persian bool) string {
	if decimals <= 0 || v == math.Trunc(v) {
		return FormatNumber(int64(math.Round(v)), persian)
	}
	raw := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(raw, ".")
	frac = strings.TrimRight(frac, "0")

	sep := latinGroupSep
	dot := "."
	if persian {
		sep = persianGroupSep
		dot = "٫" // U+066B ARABIC DECIMAL SEPARATOR
	}
	s := group(intPart, sep)
	if frac != "" {
		s += dot + frac
	}
	if v < 0 {
		s = "-" + s
	}
	if persian {
		s = Digits(s)
	}
	return s
}

// FormatCurrency formats n followed by the currency label, e.g. "۱٬۰۰۰ تومان".
func FormatCurrency(n int64, c Currency, persian bool) string {
	return FormatNumber(n, persian) + " " + c.Label()
}

// FormatPercent formats a ratio in [0,1] as a whole percentage ("۳۳٪").
func FormatPercent(ratio float64, persian bool) string {
	p := int64(math.Round(ratio * 100))
	if persian {
		return FormatNumber(p, true) + "٪"
	}
	return FormatNumber(p, false) + "%"
}

func group(digits string, sep rune) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteRune(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// abs returns |n| as unsigned so that math.MinInt64 does not overflow.
func abs(n int64) uint64 {
	if n < 0 {
		return uint64(-n)
	}
	return uint64(n)
}
