package persian_test

import (
	"fmt"
	"time"

	"github.com/lvillar/rtldoc/persian"
)

func ExampleToJalali() {
	nowruz := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	fmt.Println(persian.ToJalali(nowruz))
	fmt.Println(persian.ToJalali(time.Time{}))
	// Output:
	// ۱۴۰۳/۰۱/۰۱
	// -
}

func ExampleFormatCurrency() {
	fmt.Println(persian.FormatCurrency(12_500_000, persian.Toman, true))
	fmt.Println(persian.FormatCurrency(12_500_000, persian.Rial, false))
	// Output:
	// ۱۲٬۵۰۰٬۰۰۰ تومان
	// 12,500,000 ریال
}

// ExampleSplitInstallments shows the rounding drift of an uneven split.
func ExampleSplitInstallments() {
	s := persian.SplitInstallments(10_000_000, 0.3, 3)
	fmt.Println(s.First, s.Installments, s.Sum())
	// Output: 3000000 [2333333 2333333 2333333] 9999999
}
