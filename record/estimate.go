package record

import (
	"math"

	"github.com/lvillar/rtldoc/persian"
)

// EstimateItem is one priced line of an estimate.
type EstimateItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unit_price"`
}

// Amount returns quantity times unit price rounded to a whole unit.
func (it EstimateItem) Amount() int64 {
	return int64(math.Round(it.Quantity * float64(it.UnitPrice)))
}

// Estimate is a priced offer sent to a client before a contract.
type Estimate struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	ClientName  string `json:"client_name"`

	IssuedAt   Date `json:"issued_at"`
	ValidUntil Date `json:"valid_until"`

	Currency        persian.Currency `json:"currency,omitempty"`
	Items           []EstimateItem   `json:"items"`
	DiscountPercent float64          `json:"discount_percent,omitempty"`
	TaxPercent      float64          `json:"tax_percent,omitempty"`
}

func (*Estimate) Kind() Kind { return KindEstimate }

func (e *Estimate) DocumentNumber() string { return e.Number }

// PaymentCurrency returns the estimate currency, toman when unset.
func (e *Estimate) PaymentCurrency() persian.Currency { return currencyOrDefault(e.Currency) }

// Totals are the derived amounts of an estimate. Every step is rounded to
// a whole currency unit.
type Totals struct {
	Subtotal int64
	Discount int64
	Tax      int64
	Total    int64
}

// Totals computes the estimate totals.
func (e *Estimate) Totals() Totals {
	var t Totals
	for _, it := range e.Items {
		t.Subtotal += it.Amount()
	}
	t.Discount = int64(math.Round(float64(t.Subtotal) * e.DiscountPercent / 100))
	t.Tax = int64(math.Round(float64(t.Subtotal-t.Discount) * e.TaxPercent / 100))
	t.Total = t.Subtotal - t.Discount + t.Tax
	return t
}
