package persian

import "math"

// Schedule is a payment plan: an upfront payment followed by equal installments.
type Schedule struct {
	Total        int64
	First        int64
	Installments []int64
}

// Sum returns the sum of the first payment and every installment.
func (s Schedule) Sum() int64 {
	sum := s.First
	for _, v := range s.Installments {
		sum += v
	}
	return sum
}

// SplitInstallments computes the upfront payment as ratio of total and
// divides the remainder across n equal installments. Both steps round to the
// nearest whole unit, so Sum may differ from total by at most n.
//
// A ratio outside [0,1] is clamped and NaN is taken as 0. With n <= 0 the whole remainder is
// returned as the first payment's complement in a single installment, unless
// the remainder is zero.
func SplitInstallments(total int64, ratio float64, n int) Schedule {
	if math.IsNaN(ratio) {
		ratio = 0
	}
	ratio = math.Max(0, math.Min(1, ratio))
	first := int64(math.Round(float64(total) * ratio))
	rest := total - first

	s := Schedule{Total: total, First: first}
	if n <= 0 {
		if rest != 0 {
			s.Installments = []int64{rest}
		}
		return s
	}
	each := int64(math.Round(float64(rest) / float64(n)))
	s.Installments = make([]int64, n)
	for i := range s.Installments {
		s.Installments[i] = each
	}
	return s
}
