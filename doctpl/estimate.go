package doctpl

import (
	"strconv"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/persian"
	"github.com/lvillar/rtldoc/record"
)

// EstimateTemplate returns the built-in estimate (pre-invoice).
func EstimateTemplate() TemplateConfig {
	return TemplateConfig{
		Kind:  record.KindEstimate,
		Title: "پیش‌فاکتور {title}",
		Header: []Article{
			{Kind: KindPairs, Generator: "estimate.summary"},
		},
		Articles: []Article{
			{Title: "شرح", Generator: "record.description"},
			{Title: "اقلام", Kind: KindTable, Generator: "estimate.items"},
			{Title: "جمع کل", Kind: KindPairs, Generator: "estimate.totals"},
			{Title: "یادداشت", Generator: "record.notes"},
		},
		Signatures: [2]Party{
			{Label: "خریدار", Resolver: "client.name"},
			{Label: "فروشنده", Resolver: "company.name"},
		},
		Footer: "تاریخ تنظیم: {generated}",
	}
}

func estimateSummary(e Env) []layout.Pair {
	est := estimateOf(e)
	if est == nil {
		return nil
	}
	return pairs(
		layout.Pair{Key: "شماره پیش‌فاکتور", Value: persian.Digits(est.Number)},
		layout.Pair{Key: "تاریخ صدور", Value: est.IssuedAt.Jalali()},
		layout.Pair{Key: "معتبر تا", Value: est.ValidUntil.Jalali()},
		layout.Pair{Key: "خریدار", Value: est.ClientName},
		layout.Pair{Key: "کارشناس", Value: est.AccountName},
	)
}

func estimateItems(e Env) *layout.Table {
	est := estimateOf(e)
	if est == nil || len(est.Items) == 0 {
		return nil
	}
	tb := &layout.Table{
		Columns: []layout.Column{
			{Title: "ردیف", Width: 36, Align: layout.Center},
			{Title: "شرح"},
			{Title: "تعداد", Width: 50, Align: layout.Center},
			{Title: "قیمت واحد", Width: 90},
			{Title: "مبلغ", Width: 100},
		},
	}
	for i, it := range est.Items {
		tb.Rows = append(tb.Rows, []string{
			persian.Digits(strconv.Itoa(i + 1)),
			it.Description,
			persian.FormatFloat(it.Quantity, 2, true),
			persian.FormatNumber(it.UnitPrice, true),
			persian.FormatNumber(it.Amount(), true),
		})
	}
	return tb
}

func estimateTotals(e Env) []layout.Pair {
	est := estimateOf(e)
	if est == nil || len(est.Items) == 0 {
		return nil
	}
	cur := est.PaymentCurrency()
	t := est.Totals()

	out := []layout.Pair{{Key: "جمع اقلام", Value: money(t.Subtotal, cur)}}
	if est.DiscountPercent > 0 {
		out = append(out, layout.Pair{
			Key:   "تخفیف (" + percent(est.DiscountPercent) + ")",
			Value: money(t.Discount, cur),
		})
	}
	if est.TaxPercent > 0 {
		out = append(out, layout.Pair{
			Key:   "مالیات بر ارزش افزوده (" + percent(est.TaxPercent) + ")",
			Value: money(t.Tax, cur),
		})
	}
	return append(out, layout.Pair{Key: "مبلغ قابل پرداخت", Value: money(t.Total, cur)})
}

func percent(p float64) string { return persian.FormatFloat(p, 2, true) + "٪" }
