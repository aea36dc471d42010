package persian

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGregorianToJalali(t *testing.T) {
	cases := []struct {
		gy, gm, gd int
		jy, jm, jd int
	}{
		{2024, 3, 20, 1403, 1, 1},
		{2023, 3, 21, 1402, 1, 1},
		{2024, 3, 19, 1402, 12, 29},
		{2025, 3, 20, 1403, 12, 30},
		{1979, 2, 11, 1357, 11, 22},
		{2000, 1, 1, 1378, 10, 11},
	}
	for _, c := range cases {
		jy, jm, jd := GregorianToJalali(c.gy, c.gm, c.gd)
		assert.Equal(t, []int{c.jy, c.jm, c.jd}, []int{jy, jm, jd}, "%d-%02d-%02d", c.gy, c.gm, c.gd)

		gy, gm, gd := JalaliToGregorian(c.jy, c.jm, c.jd)
		assert.Equal(t, []int{c.gy, c.gm, c.gd}, []int{gy, gm, gd}, "%d/%02d/%02d", c.jy, c.jm, c.jd)
	}
}

func TestJalaliRoundTrip(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 366*12; d++ {
		day := start.AddDate(0, 0, d)
		jy, jm, jd := GregorianToJalali(day.Year(), int(day.Month()), day.Day())
		gy, gm, gd := JalaliToGregorian(jy, jm, jd)
		require.Equal(t, day.Format("2006-01-02"),
			time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
	}
}

func TestIsJalaliLeap(t *testing.T) {
	assert.True(t, IsJalaliLeap(1403))
	assert.False(t, IsJalaliLeap(1402))
	assert.True(t, IsJalaliLeap(1399))
}

func TestToJalali(t *testing.T) {
	d := time.Date(2024, 3, 20, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱", ToJalali(d))
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱ - ۱۴:۰۵", ToJalaliDateTime(d))

	// Deterministic across calls.
	assert.Equal(t, ToJalali(d), ToJalali(d))
}

func TestToJalaliSentinel(t *testing.T) {
	assert.Equal(t, Sentinel, ToJalali(time.Time{}))
	assert.Equal(t, Sentinel, ToJalaliDateTime(time.Time{}))
	assert.Equal(t, Sentinel, ParseToJalali(""))
	assert.Equal(t, Sentinel, ParseToJalali("not a date"))
	assert.Equal(t, Sentinel, ParseToJalali("2024-13-45"))
	assert.Equal(t, Sentinel, ParseToJalaliDateTime("yesterday"))
}

func TestParseToJalali(t *testing.T) {
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱", ParseToJalali("2024-03-20"))
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱", ParseToJalali("2024-03-20T10:00:00Z"))
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱ - ۱۰:۳۰", ParseToJalaliDateTime("2024-03-20T10:30:00Z"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0, false))
	assert.Equal(t, "999", FormatNumber(999, false))
	assert.Equal(t, "1,000", FormatNumber(1000, false))
	assert.Equal(t, "10,000,000", FormatNumber(10_000_000, false))
	assert.Equal(t, "-1,234,567", FormatNumber(-1234567, false))
	assert.Equal(t, "۱۰٬۰۰۰٬۰۰۰", FormatNumber(10_000_000, true))
	assert.Equal(t, "-9,223,372,036,854,775,808", FormatNumber(math.MinInt64, false))
	assert.Equal(t, "9,223,372,036,854,775,807", FormatNumber(math.MaxInt64, false))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "2", FormatFloat(2, 2, false))
	assert.Equal(t, "1,234.5", FormatFloat(1234.5, 2, false))
	assert.Equal(t, "۱٫۲۵", FormatFloat(1.25, 2, true))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "۱٬۵۰۰٬۰۰۰ تومان", FormatCurrency(1_500_000, Toman, true))
	assert.Equal(t, "1,500,000 ریال", FormatCurrency(1_500_000, Rial, false))
	assert.Equal(t, "۲۵۰ دلار", FormatCurrency(250, Dollar, true))
	assert.Equal(t, "۹۰ یورو", FormatCurrency(90, Euro, true))
	assert.Equal(t, "5 GBP", FormatCurrency(5, Currency("GBP"), false))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "ماده ۱۲", Digits("ماده 12"))
	assert.Equal(t, "12/05", LatinDigits("۱۲/٠٥"))
	assert.Equal(t, "۳۳٪", FormatPercent(0.33, true))
	assert.Equal(t, "33%", FormatPercent(0.33, false))
}

func TestSplitInstallments(t *testing.T) {
	s := SplitInstallments(10_000_000, 0.33, 2)
	assert.Equal(t, int64(3_300_000), s.First)
	assert.Equal(t, []int64{3_350_000, 3_350_000}, s.Installments)
	assert.Equal(t, int64(10_000_000), s.Sum())
}

func TestSplitInstallmentsRoundingTolerance(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 11} {
		for _, ratio := range []float64{0, 0.1, 0.25, 0.33, 0.5, 0.7} {
			s := SplitInstallments(9_999_999, ratio, n)
			require.Len(t, s.Installments, n)
			diff := s.Sum() - s.Total
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, int64(n), "n=%d ratio=%v", n, ratio)
		}
	}
}

func TestSplitInstallmentsEdges(t *testing.T) {
	s := SplitInstallments(1000, 1.5, 3)
	assert.Equal(t, int64(1000), s.First)
	assert.Equal(t, []int64{0, 0, 0}, s.Installments)

	s = SplitInstallments(1000, 0.4, 0)
	assert.Equal(t, int64(400), s.First)
	assert.Equal(t, []int64{600}, s.Installments)

	s = SplitInstallments(1000, 1, 0)
	assert.Empty(t, s.Installments)
}

func TestSplitInstallmentsOddRatios(t *testing.T) {
	cases := []struct {
		ratio float64
		first int64
	}{
		{math.NaN(), 0},
		{math.Inf(1), 1000},
		{math.Inf(-1), 0},
		{-0.5, 0},
	}
	for _, c := range cases {
		s := SplitInstallments(1000, c.ratio, 2)
		assert.Equal(t, c.first, s.First, "ratio=%v", c.ratio)
		assert.Equal(t, int64(1000), s.Sum(), "ratio=%v", c.ratio)
	}
}
