package doctpl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/persian"
	"github.com/lvillar/rtldoc/record"
)

var (
	// ErrUnknownGenerator is returned for a generator or resolver name that
	// is not in the registry.
	ErrUnknownGenerator = errors.New("doctpl: unknown generator")
	// ErrKindMismatch is returned when a record is rendered with a template
	// for another document kind.
	ErrKindMismatch = errors.New("doctpl: record kind does not match template")
	// ErrInvalidTemplate is returned for structurally invalid templates.
	ErrInvalidTemplate = errors.New("doctpl: invalid template")
	// ErrNoRecord is returned when Env carries no record.
	ErrNoRecord = errors.New("doctpl: no record")
)

// Builtin returns the built-in template for kind.
func Builtin(kind record.Kind) (TemplateConfig, error) {
	switch kind {
	case record.KindContract:
		return ContractTemplate(), nil
	case record.KindEstimate:
		return EstimateTemplate(), nil
	}
	return TemplateConfig{}, fmt.Errorf("%w: %q", record.ErrUnknownKind, kind)
}

// Validate checks article kinds and that every generator and resolver name
// is registered.
func (cfg TemplateConfig) Validate() error {
	switch cfg.Kind {
	case "", record.KindContract, record.KindEstimate:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidTemplate, cfg.Kind)
	}

	check := func(section string, i int, a Article) error {
		switch a.Kind {
		case "", KindText, KindList, KindPairs, KindTable:
		default:
			return fmt.Errorf("%w: %s %d: kind %q", ErrInvalidTemplate, section, i+1, a.Kind)
		}
		if a.Generator == "" {
			if a.Kind == KindPairs || a.Kind == KindTable {
				return fmt.Errorf("%w: %s %d: %s articles need a generator", ErrInvalidTemplate, section, i+1, a.Kind)
			}
			return nil
		}
		if a.Text != "" {
			return fmt.Errorf("%w: %s %d: both text and generator set", ErrInvalidTemplate, section, i+1)
		}
		g, ok := generators[a.Generator]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownGenerator, a.Generator)
		}
		if a.Kind != "" && a.Kind != g.kind {
			return fmt.Errorf("%w: %s %d: generator %q yields %s, not %s",
				ErrInvalidTemplate, section, i+1, a.Generator, g.kind, a.Kind)
		}
		return nil
	}
	for i, a := range cfg.Header {
		if err := check("header", i, a); err != nil {
			return err
		}
	}
	for i, a := range cfg.Articles {
		if err := check("article", i, a); err != nil {
			return err
		}
	}
	for _, p := range cfg.Signatures {
		if _, ok := resolvers[p.Resolver]; p.Resolver != "" && !ok {
			return fmt.Errorf("%w: resolver %q", ErrUnknownGenerator, p.Resolver)
		}
	}
	return nil
}

// Render resolves cfg against env into layout blocks: the company header,
// the title, header articles, the articles in order, the signatures and the
// footer. Articles whose content is empty are left out and do not take an
// article number. Render is deterministic for equal inputs.
func Render(cfg TemplateConfig, env Env) ([]layout.Block, error) {
	if env.Record == nil {
		return nil, ErrNoRecord
	}
	if cfg.Kind != "" && cfg.Kind != env.Record.Kind() {
		return nil, fmt.Errorf("%w: template %s, record %s", ErrKindMismatch, cfg.Kind, env.Record.Kind())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env.Company = DefaultCompany().Merge(env.Company)
	vals := placeholders(env)

	var blocks []layout.Block
	blocks = append(blocks, companyBlocks(env.Company)...)

	if title := strings.TrimSpace(fill(cfg.Title, vals)); title != "" {
		blocks = append(blocks, layout.Paragraph{Text: title, Align: layout.Center, Style: layout.Title})
	}

	for _, a := range cfg.Header {
		blocks = append(blocks, articleBlocks(a, a.Title, env, vals)...)
	}

	n := 0
	for _, a := range cfg.Articles {
		title := a.Title
		if cfg.Numbered {
			title = articleTitle(n+1, a.Title)
		}
		if b := articleBlocks(a, title, env, vals); len(b) > 0 {
			blocks = append(blocks, b...)
			n++
		}
	}

	for _, p := range cfg.Signatures {
		name := ""
		if fn, ok := resolvers[p.Resolver]; ok {
			name = fn(env)
		}
		blocks = append(blocks, layout.SignatureBox{Label: p.Label, Name: name})
	}

	if footer := strings.TrimSpace(fill(cfg.Footer, vals)); footer != "" {
		blocks = append(blocks, layout.Paragraph{Text: footer, Align: layout.Center, Style: layout.Small})
	}
	return blocks, nil
}

func companyBlocks(c Company) []layout.Block {
	var blocks []layout.Block
	if c.Name != "" {
		blocks = append(blocks, layout.Paragraph{Text: c.Name, Align: layout.Center, Style: layout.Heading})
	}
	contact := pairs(
		layout.Pair{Key: "تلفن", Value: persian.Digits(c.Phone)},
		layout.Pair{Key: "نشانی", Value: c.Address},
		layout.Pair{Key: "وب‌سایت", Value: c.Website},
		layout.Pair{Key: "ایمیل", Value: c.Email},
	)
	if len(contact) > 0 {
		blocks = append(blocks, layout.KeyValueBox{Pairs: contact})
	}
	return blocks
}

func articleContent(a Article, env Env, vals map[string]string) (ArticleKind, content) {
	if a.Generator != "" {
		g := generators[a.Generator]
		return g.kind, g.fn(env)
	}
	text := fill(a.Text, vals)
	if a.Kind == KindList {
		var items []string
		for _, l := range strings.Split(text, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				items = append(items, l)
			}
		}
		return KindList, content{items: items}
	}
	return KindText, content{text: text}
}

func articleBlocks(a Article, title string, env Env, vals map[string]string) []layout.Block {
	kind, c := articleContent(a, env, vals)
	if c.empty() {
		return nil
	}

	var blocks []layout.Block
	if title != "" {
		blocks = append(blocks, layout.Paragraph{Text: title, Style: layout.Heading})
	}
	switch kind {
	case KindList:
		blocks = append(blocks, layout.BulletList{Items: c.items})
	case KindPairs:
		blocks = append(blocks, layout.KeyValueBox{Pairs: c.pairs})
	case KindTable:
		blocks = append(blocks, *c.table)
	default:
		blocks = append(blocks, layout.Paragraph{Text: strings.TrimSpace(c.text)})
	}
	return blocks
}
