package doctpl

import (
	"sort"
	"strings"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/persian"
	"github.com/lvillar/rtldoc/record"
)

// content is the output of a generator. Only the field matching the
// generator kind is set.
type content struct {
	text  string
	items []string
	pairs []layout.Pair
	table *layout.Table
}

func (c content) empty() bool {
	return strings.TrimSpace(c.text) == "" && len(c.items) == 0 && len(c.pairs) == 0 &&
		(c.table == nil || len(c.table.Rows) == 0)
}

type generator struct {
	kind ArticleKind
	fn   func(Env) content
}

func textGen(fn func(Env) string) generator {
	return generator{KindText, func(e Env) content { return content{text: fn(e)} }}
}

func listGen(fn func(Env) []string) generator {
	return generator{KindList, func(e Env) content { return content{items: fn(e)} }}
}

func pairsGen(fn func(Env) []layout.Pair) generator {
	return generator{KindPairs, func(e Env) content { return content{pairs: fn(e)} }}
}

func tableGen(fn func(Env) *layout.Table) generator {
	return generator{KindTable, func(e Env) content { return content{table: fn(e)} }}
}

// generators is the fixed registry of article content functions. Every
// function is total: a field it needs that is missing shortens or empties
// its output, and an empty article is left out of the document.
var generators = map[string]generator{
	"record.description": textGen(descriptionOf),
	"record.notes":       textGen(notesOf),

	"contract.summary":            pairsGen(contractSummary),
	"contract.parties":            textGen(contractParties),
	"contract.subject":            textGen(contractSubject),
	"contract.duration":           textGen(contractDuration),
	"contract.payment":            textGen(contractPayment),
	"contract.hosting":            listGen(contractHosting),
	"contract.obligations":        listGen(contractObligations),
	"contract.client_obligations": listGen(clientObligations),

	"estimate.summary": pairsGen(estimateSummary),
	"estimate.items":   tableGen(estimateItems),
	"estimate.totals":  pairsGen(estimateTotals),
}

// resolvers yield signer names.
var resolvers = map[string]func(Env) string{
	"client.name":  clientName,
	"company.name": func(e Env) string { return e.Company.Name },
	"account.name": accountName,
}

// GeneratorNames returns the registered generator names in sorted order.
func GeneratorNames() []string { return sortedKeys(generators) }

// ResolverNames returns the registered resolver names in sorted order.
func ResolverNames() []string { return sortedKeys(resolvers) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func contractOf(e Env) *record.Contract {
	c, _ := e.Record.(*record.Contract)
	return c
}

func estimateOf(e Env) *record.Estimate {
	est, _ := e.Record.(*record.Estimate)
	return est
}

func descriptionOf(e Env) string {
	switch r := e.Record.(type) {
	case *record.Contract:
		return r.Description
	case *record.Estimate:
		return r.Description
	}
	return ""
}

func notesOf(e Env) string {
	switch r := e.Record.(type) {
	case *record.Contract:
		return r.Notes
	case *record.Estimate:
		return r.Notes
	}
	return ""
}

func clientName(e Env) string {
	switch r := e.Record.(type) {
	case *record.Contract:
		return r.ClientName
	case *record.Estimate:
		return r.ClientName
	}
	return ""
}

func accountName(e Env) string {
	switch r := e.Record.(type) {
	case *record.Contract:
		return r.AccountName
	case *record.Estimate:
		return r.AccountName
	}
	return ""
}

func titleOf(e Env) string {
	switch r := e.Record.(type) {
	case *record.Contract:
		return r.Title
	case *record.Estimate:
		return r.Title
	}
	return ""
}

// placeholders returns the values static template text may refer to.
func placeholders(e Env) map[string]string {
	number := ""
	if e.Record != nil {
		number = persian.Digits(e.Record.DocumentNumber())
	}
	return map[string]string{
		"number":          number,
		"title":           titleOf(e),
		"client.name":     clientName(e),
		"account.name":    accountName(e),
		"company.name":    e.Company.Name,
		"company.phone":   persian.Digits(e.Company.Phone),
		"company.address": e.Company.Address,
		"company.website": e.Company.Website,
		"company.email":   e.Company.Email,
		"generated":       persian.ToJalali(e.GeneratedAt),
	}
}

// fill substitutes {name} placeholders. Unknown placeholders are left as is.
func fill(s string, vals map[string]string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	keys := sortedKeys(vals)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vals[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// pairs drops entries with an empty value.
func pairs(kv ...layout.Pair) []layout.Pair {
	out := kv[:0:0]
	for _, p := range kv {
		if strings.TrimSpace(p.Value) != "" && p.Value != persian.Sentinel {
			out = append(out, p)
		}
	}
	return out
}
