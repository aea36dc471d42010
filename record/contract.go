package record

import (
	"github.com/lvillar/rtldoc/persian"
)

// Contract is a service contract between the company and a client.
type Contract struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	AccountName string `json:"account_name,omitempty"`

	ClientName       string `json:"client_name"`
	ClientPhone      string `json:"client_phone,omitempty"`
	ClientAddress    string `json:"client_address,omitempty"`
	ClientNationalID string `json:"client_national_id,omitempty"`

	SignedAt     Date `json:"signed_at"`
	StartDate    Date `json:"start_date"`
	EndDate      Date `json:"end_date"`
	DurationDays int  `json:"duration_days,omitempty"`

	Amount            int64            `json:"amount"`
	Currency          persian.Currency `json:"currency,omitempty"`
	FirstPaymentRatio float64          `json:"first_payment_ratio,omitempty"`
	Installments      int              `json:"installments,omitempty"`

	DomainName    string `json:"domain_name,omitempty"`
	HostingPlan   string `json:"hosting_plan,omitempty"`
	HostingMonths int    `json:"hosting_months,omitempty"`
	SupportMonths int    `json:"support_months,omitempty"`

	Obligations []string `json:"obligations,omitempty"`
}

func (*Contract) Kind() Kind { return KindContract }

func (c *Contract) DocumentNumber() string { return c.Number }

// PaymentCurrency returns the contract currency, toman when unset.
func (c *Contract) PaymentCurrency() persian.Currency { return currencyOrDefault(c.Currency) }

// Schedule splits the amount into the first payment and the installments.
func (c *Contract) Schedule() persian.Schedule {
	return persian.SplitInstallments(c.Amount, c.FirstPaymentRatio, c.Installments)
}

// Duration returns the contract length in days: DurationDays when set,
// otherwise the span between the start and end dates.
func (c *Contract) Duration() int {
	if c.DurationDays > 0 {
		return c.DurationDays
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() || c.EndDate.Before(c.StartDate.Time) {
		return 0
	}
	return int(c.EndDate.Sub(c.StartDate.Time).Hours() / 24)
}
