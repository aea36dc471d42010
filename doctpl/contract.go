package doctpl

import (
	"strconv"
	"strings"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/persian"
	"github.com/lvillar/rtldoc/record"
)

// ContractTemplate returns the built-in service contract.
func ContractTemplate() TemplateConfig {
	return TemplateConfig{
		Kind:  record.KindContract,
		Title: "قرارداد {title}",
		Header: []Article{
			{Kind: KindPairs, Generator: "contract.summary"},
		},
		Articles: []Article{
			{Title: "طرفین قرارداد", Generator: "contract.parties"},
			{Title: "موضوع قرارداد", Generator: "contract.subject"},
			{Title: "مدت قرارداد", Generator: "contract.duration"},
			{Title: "مبلغ و شرایط پرداخت", Generator: "contract.payment"},
			{Title: "خدمات میزبانی و پشتیبانی", Kind: KindList, Generator: "contract.hosting"},
			{Title: "تعهدات پیمانکار", Kind: KindList, Generator: "contract.obligations"},
			{Title: "تعهدات کارفرما", Kind: KindList, Generator: "contract.client_obligations"},
			{Title: "توضیحات", Generator: "record.notes"},
		},
		Signatures: [2]Party{
			{Label: "کارفرما", Resolver: "client.name"},
			{Label: "پیمانکار", Resolver: "company.name"},
		},
		Footer:   "تاریخ تنظیم: {generated}",
		Numbered: true,
	}
}

func money(n int64, c persian.Currency) string { return persian.FormatCurrency(n, c, true) }

func count(n int) string { return persian.FormatNumber(int64(n), true) }

func contractSummary(e Env) []layout.Pair {
	c := contractOf(e)
	if c == nil {
		return nil
	}
	return pairs(
		layout.Pair{Key: "شماره قرارداد", Value: persian.Digits(c.Number)},
		layout.Pair{Key: "تاریخ", Value: c.SignedAt.Jalali()},
		layout.Pair{Key: "کارفرما", Value: c.ClientName},
		layout.Pair{Key: "کارشناس", Value: c.AccountName},
	)
}

func contractParties(e Env) string {
	c := contractOf(e)
	if c == nil {
		return ""
	}
	client := c.ClientName
	if client == "" {
		client = "کارفرما"
	}

	var b strings.Builder
	b.WriteString("این قرارداد میان " + e.Company.Name + " به عنوان پیمانکار و " + client)
	if c.ClientNationalID != "" {
		b.WriteString(" به کد ملی " + persian.Digits(c.ClientNationalID))
	}
	if c.ClientAddress != "" {
		b.WriteString(" به نشانی " + c.ClientAddress)
	}
	if c.ClientPhone != "" {
		b.WriteString(" و شماره تماس " + persian.Digits(c.ClientPhone))
	}
	b.WriteString(" به عنوان کارفرما منعقد می‌گردد.")
	return b.String()
}

func contractSubject(e Env) string {
	c := contractOf(e)
	if c == nil {
		return ""
	}
	var parts []string
	if c.Title != "" {
		parts = append(parts, "موضوع این قرارداد عبارت است از "+c.Title+".")
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	return strings.Join(parts, " ")
}

const (
	durationFull  = "مدت اجرای این قرارداد {days} روز از تاریخ {start} تا تاریخ {end} می‌باشد."
	durationStart = "مدت اجرای این قرارداد {days} روز از تاریخ {start} می‌باشد."
	durationDays  = "مدت اجرای این قرارداد {days} روز از تاریخ امضای قرارداد می‌باشد."
	durationRange = "این قرارداد از تاریخ {start} تا تاریخ {end} معتبر است."
)

func contractDuration(e Env) string {
	c := contractOf(e)
	if c == nil {
		return ""
	}
	days := c.Duration()
	vals := map[string]string{
		"days":  count(days),
		"start": c.StartDate.Jalali(),
		"end":   c.EndDate.Jalali(),
	}
	hasStart, hasEnd := !c.StartDate.IsZero(), !c.EndDate.IsZero()
	switch {
	case days > 0 && hasStart && hasEnd:
		return fill(durationFull, vals)
	case days > 0 && hasStart:
		return fill(durationStart, vals)
	case days > 0:
		return fill(durationDays, vals)
	case hasStart && hasEnd:
		return fill(durationRange, vals)
	}
	return ""
}

const (
	paymentSplit    = "مبلغ کل قرارداد {amount} می‌باشد. مبلغ {first} معادل {percent} مبلغ کل در زمان عقد قرارداد و مابقی در {count} قسط هر یک به مبلغ {installment} پرداخت می‌گردد."
	paymentInstall  = "مبلغ کل قرارداد {amount} می‌باشد که در {count} قسط هر یک به مبلغ {installment} پرداخت می‌گردد."
	paymentUpfront  = "مبلغ کل قرارداد {amount} می‌باشد که در زمان عقد قرارداد به صورت یکجا پرداخت می‌گردد."
	paymentDelivery = "مبلغ کل قرارداد {amount} می‌باشد که پس از تحویل کار پرداخت می‌گردد."
	paymentRest     = "مبلغ کل قرارداد {amount} می‌باشد. مبلغ {first} معادل {percent} مبلغ کل در زمان عقد قرارداد و مابقی به مبلغ {rest} پس از تحویل کار پرداخت می‌گردد."
)

// contractPayment describes the payment schedule. The arithmetic is
// persian.SplitInstallments, so every emitter prints the same amounts.
func contractPayment(e Env) string {
	c := contractOf(e)
	if c == nil || c.Amount <= 0 {
		return ""
	}
	cur := c.PaymentCurrency()
	s := c.Schedule()

	vals := map[string]string{
		"amount":  money(s.Total, cur),
		"first":   money(s.First, cur),
		"percent": persian.FormatPercent(float64(s.First)/float64(s.Total), true),
		"count":   count(len(s.Installments)),
	}
	if len(s.Installments) > 0 {
		vals["installment"] = money(s.Installments[0], cur)
		vals["rest"] = vals["installment"]
	}

	switch {
	case c.Installments > 0 && s.First > 0:
		return fill(paymentSplit, vals)
	case c.Installments > 0:
		return fill(paymentInstall, vals)
	case len(s.Installments) == 0:
		return fill(paymentUpfront, vals)
	case s.First == 0:
		return fill(paymentDelivery, vals)
	}
	return fill(paymentRest, vals)
}

func contractHosting(e Env) []string {
	c := contractOf(e)
	if c == nil {
		return nil
	}
	var items []string
	if c.DomainName != "" {
		items = append(items, "ثبت و تمدید دامنه "+c.DomainName)
	}
	switch {
	case c.HostingPlan != "" && c.HostingMonths > 0:
		items = append(items, "میزبانی وب با پلن "+c.HostingPlan+" به مدت "+count(c.HostingMonths)+" ماه")
	case c.HostingPlan != "":
		items = append(items, "میزبانی وب با پلن "+c.HostingPlan)
	case c.HostingMonths > 0:
		items = append(items, "میزبانی وب به مدت "+count(c.HostingMonths)+" ماه")
	}
	if c.SupportMonths > 0 {
		items = append(items, "پشتیبانی فنی به مدت "+count(c.SupportMonths)+" ماه پس از تحویل")
	}
	return items
}

var contractorDuties = []string{
	"انجام کامل موضوع قرارداد مطابق با مشخصات توافق‌شده",
	"حفظ محرمانگی اطلاعات کارفرما",
	"ارائه گزارش پیشرفت کار در صورت درخواست کارفرما",
}

func contractObligations(e Env) []string {
	c := contractOf(e)
	if c == nil {
		return nil
	}
	items := append([]string(nil), contractorDuties...)
	for _, o := range c.Obligations {
		if o = strings.TrimSpace(o); o != "" {
			items = append(items, o)
		}
	}
	return items
}

var clientDuties = []string{
	"پرداخت به‌موقع مبالغ مطابق با شرایط پرداخت",
	"ارائه اطلاعات و محتوای مورد نیاز در زمان مقرر",
}

func clientObligations(e Env) []string {
	if contractOf(e) == nil {
		return nil
	}
	return append([]string(nil), clientDuties...)
}

// articleTitle returns the numbered title of article n.
func articleTitle(n int, title string) string {
	s := "ماده " + persian.Digits(strconv.Itoa(n))
	if title == "" {
		return s
	}
	return s + " - " + title
}
