// Package doctpl describes the fixed structure of business documents and
// renders a record into layout blocks.
//
// A template is plain data: article bodies are either static text or the
// name of a content generator from a fixed registry, so templates can be
// stored as YAML or JSON and validated before use.
//
// Example YAML:
//
//	kind: contract
//	title: قرارداد {number}
//	numbered: true
//	articles:
//	  - title: مبلغ و شرایط پرداخت
//	    generator: contract.payment
//	  - title: تعهدات پیمانکار
//	    kind: list
//	    generator: contract.obligations
//	signatures:
//	  - {label: کارفرما, resolver: client.name}
//	  - {label: پیمانکار, resolver: company.name}
package doctpl

import (
	"time"

	"github.com/lvillar/rtldoc/record"
)

// ArticleKind selects the block an article body is rendered as.
type ArticleKind string

const (
	KindText  ArticleKind = "text"  // Paragraph
	KindList  ArticleKind = "list"  // BulletList
	KindPairs ArticleKind = "pairs" // KeyValueBox
	KindTable ArticleKind = "table" // Table
)

// Article is one section of a document. Exactly one of Text and Generator
// is set. Static text may contain {placeholders}; a static list takes one
// item per line.
type Article struct {
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	Kind      ArticleKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Text      string      `json:"text,omitempty" yaml:"text,omitempty"`
	Generator string      `json:"generator,omitempty" yaml:"generator,omitempty"`
}

// Party is one signer. Resolver names a function from the resolver registry
// that yields the signer's name.
type Party struct {
	Label    string `json:"label" yaml:"label"`
	Resolver string `json:"resolver,omitempty" yaml:"resolver,omitempty"`
}

// TemplateConfig is the skeleton of one document type. Article order is
// preserved in the output.
type TemplateConfig struct {
	Kind       record.Kind `json:"kind" yaml:"kind"`
	Title      string      `json:"title" yaml:"title"`
	Header     []Article   `json:"header,omitempty" yaml:"header,omitempty"`
	Articles   []Article   `json:"articles" yaml:"articles"`
	Signatures [2]Party    `json:"signatures" yaml:"signatures"`
	Footer     string      `json:"footer,omitempty" yaml:"footer,omitempty"`
	// Numbered prefixes article titles with "ماده N".
	Numbered bool `json:"numbered,omitempty" yaml:"numbered,omitempty"`
}

// Company holds the issuer details printed in the header.
type Company struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}

// DefaultCompany returns the issuer used when no settings are configured.
func DefaultCompany() Company {
	return Company{Name: "شرکت طراحی وب"}
}

// Merge returns c with every non-empty field of o applied over it.
func (c Company) Merge(o Company) Company {
	if o.Name != "" {
		c.Name = o.Name
	}
	if o.Phone != "" {
		c.Phone = o.Phone
	}
	if o.Address != "" {
		c.Address = o.Address
	}
	if o.Website != "" {
		c.Website = o.Website
	}
	if o.Email != "" {
		c.Email = o.Email
	}
	return c
}

// Env is everything a template is rendered from. GeneratedAt is the only
// time input; rendering never reads the clock.
type Env struct {
	Record      record.Record
	Company     Company
	GeneratedAt time.Time
}
