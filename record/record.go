// Package record holds the business records documents are generated from.
// Records are read-only snapshots assembled by the application before a
// document is requested.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lvillar/rtldoc/persian"
)

// Kind identifies a document type.
type Kind string

const (
	KindContract Kind = "contract"
	KindEstimate Kind = "estimate"
)

// ErrUnknownKind is returned for a document kind other than contract or estimate.
var ErrUnknownKind = errors.New("record: unknown kind")

// ParseKind validates s as a document kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindContract, KindEstimate:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Record is a contract or an estimate.
type Record interface {
	Kind() Kind
	DocumentNumber() string
}

// Decode reads one record of the given kind from JSON.
func Decode(kind Kind, r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	switch kind {
	case KindContract:
		var c Contract
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("record: decode contract: %w", err)
		}
		return &c, nil
	case KindEstimate:
		var e Estimate
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("record: decode estimate: %w", err)
		}
		return &e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Date is a calendar date or timestamp. The zero value means missing.
type Date struct {
	time.Time
}

// NewDate returns the Date for t.
func NewDate(t time.Time) Date { return Date{Time: t} }

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts RFC 3339 timestamps, plain dates, null and "".
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s = strings.TrimSpace(s); s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Time: t}
			return nil
		}
	}
	return fmt.Errorf("date: cannot parse %q", s)
}

// MarshalJSON writes RFC 3339, or null for a missing date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// Jalali returns the date in the Persian calendar with Persian digits, or
// persian.Sentinel when the date is missing.
func (d Date) Jalali() string { return persian.ToJalali(d.Time) }

func currencyOrDefault(c persian.Currency) persian.Currency {
	if c == "" {
		return persian.Toman
	}
	return c
}
