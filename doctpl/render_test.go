package doctpl

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/rtldoc/layout"
	"github.com/lvillar/rtldoc/persian"
	"github.com/lvillar/rtldoc/record"
)

var generatedAt = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func sampleContract() *record.Contract {
	return &record.Contract{
		ID:                "1",
		Number:            "C-12",
		Title:             "طراحی وب‌سایت",
		ClientName:        "علی رضایی",
		ClientPhone:       "09120000000",
		SignedAt:          record.NewDate(generatedAt),
		StartDate:         record.NewDate(generatedAt),
		DurationDays:      60,
		Amount:            10_000_000,
		Currency:          persian.Toman,
		FirstPaymentRatio: 0.33,
		Installments:      2,
		Obligations:       []string{"تحویل کد منبع"},
	}
}

func contractEnv() Env {
	return Env{Record: sampleContract(), GeneratedAt: generatedAt}
}

func paragraphs(blocks []layout.Block, style layout.Style) []string {
	var out []string
	for _, b := range blocks {
		if p, ok := b.(layout.Paragraph); ok && p.Style == style {
			out = append(out, p.Text)
		}
	}
	return out
}

func TestRenderContract(t *testing.T) {
	blocks, err := Render(ContractTemplate(), contractEnv())
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	assert.Equal(t, layout.Paragraph{Text: DefaultCompany().Name, Align: layout.Center, Style: layout.Heading}, blocks[0])
	assert.Equal(t, []string{"قرارداد طراحی وب‌سایت"}, paragraphs(blocks, layout.Title))

	summary, ok := blocks[2].(layout.KeyValueBox)
	require.True(t, ok, "summary box follows the title")
	assert.Equal(t, layout.Pair{Key: "شماره قرارداد", Value: "C-۱۲"}, summary.Pairs[0])
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱", summary.Pairs[1].Value)

	// Signatures close the document, followed only by the footer.
	n := len(blocks)
	assert.Equal(t, layout.SignatureBox{Label: "کارفرما", Name: "علی رضایی"}, blocks[n-3])
	assert.Equal(t, layout.SignatureBox{Label: "پیمانکار", Name: DefaultCompany().Name}, blocks[n-2])
	assert.Equal(t, layout.Paragraph{Text: "تاریخ تنظیم: ۱۴۰۳/۰۱/۰۱", Align: layout.Center, Style: layout.Small}, blocks[n-1])
}

func TestRenderPaymentArticle(t *testing.T) {
	blocks, err := Render(ContractTemplate(), contractEnv())
	require.NoError(t, err)

	var payment string
	for i, b := range blocks {
		if p, ok := b.(layout.Paragraph); ok && strings.HasSuffix(p.Text, "مبلغ و شرایط پرداخت") {
			payment = blocks[i+1].(layout.Paragraph).Text
		}
	}
	require.NotEmpty(t, payment)
	for _, want := range []string{"۱۰٬۰۰۰٬۰۰۰ تومان", "۳٬۳۰۰٬۰۰۰ تومان", "۳۳٪", "۲ قسط", "۳٬۳۵۰٬۰۰۰ تومان"} {
		assert.Contains(t, payment, want)
	}
}

func TestRenderOmitsEmptyArticlesAndRenumbers(t *testing.T) {
	blocks, err := Render(ContractTemplate(), contractEnv())
	require.NoError(t, err)

	var titles []string
	for _, h := range paragraphs(blocks, layout.Heading) {
		if strings.HasPrefix(h, "ماده") {
			titles = append(titles, h)
		}
	}
	// No hosting fields and no notes: two articles drop out.
	require.Len(t, titles, 6)
	for i, title := range titles {
		assert.True(t, strings.HasPrefix(title, articleTitle(i+1, "")), title)
	}
	for _, title := range titles {
		assert.NotContains(t, title, "میزبانی")
	}

	var obligations layout.BulletList
	for _, b := range blocks {
		if l, ok := b.(layout.BulletList); ok && len(l.Items) > len(clientDuties) {
			obligations = l
		}
	}
	assert.Equal(t, "تحویل کد منبع", obligations.Items[len(obligations.Items)-1])
}

func TestRenderIsIdempotent(t *testing.T) {
	a, err := Render(ContractTemplate(), contractEnv())
	require.NoError(t, err)
	b, err := Render(ContractTemplate(), contractEnv())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderMissingFieldsDegrade(t *testing.T) {
	blocks, err := Render(ContractTemplate(), Env{Record: &record.Contract{}})
	require.NoError(t, err)
	assert.Contains(t, paragraphs(blocks, layout.Small), "تاریخ تنظیم: "+persian.Sentinel)

	_, isSig := blocks[len(blocks)-2].(layout.SignatureBox)
	assert.True(t, isSig)
}

func TestRenderEstimate(t *testing.T) {
	est := &record.Estimate{
		Number:     "E-7",
		Title:      "میزبانی",
		ClientName: "Acme",
		IssuedAt:   record.NewDate(generatedAt),
		Items: []record.EstimateItem{
			{Description: "Hosting", Quantity: 12, UnitPrice: 150_000},
			{Description: "Domain", Quantity: 1, UnitPrice: 420_000},
		},
		DiscountPercent: 10,
	}
	blocks, err := Render(EstimateTemplate(), Env{Record: est, GeneratedAt: generatedAt})
	require.NoError(t, err)

	var tb layout.Table
	var totals layout.KeyValueBox
	for _, b := range blocks {
		switch v := b.(type) {
		case layout.Table:
			tb = v
		case layout.KeyValueBox:
			totals = v
		}
	}
	require.Len(t, tb.Rows, 2)
	assert.Equal(t, []string{"۱", "Hosting", "۱۲", "۱۵۰٬۰۰۰", "۱٬۸۰۰٬۰۰۰"}, tb.Rows[0])
	require.Len(t, totals.Pairs, 3)
	assert.Equal(t, "۲٬۲۲۰٬۰۰۰ تومان", totals.Pairs[0].Value)
	assert.Equal(t, "تخفیف (۱۰٪)", totals.Pairs[1].Key)
	assert.Equal(t, "۱٬۹۹۸٬۰۰۰ تومان", totals.Pairs[2].Value)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(ContractTemplate(), Env{Record: &record.Estimate{}})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Render(ContractTemplate(), Env{})
	assert.ErrorIs(t, err, ErrNoRecord)

	cfg := ContractTemplate()
	cfg.Articles = append(cfg.Articles, Article{Title: "x", Generator: "contract.missing"})
	_, err = Render(cfg, contractEnv())
	assert.ErrorIs(t, err, ErrUnknownGenerator)
}

func TestStaticArticles(t *testing.T) {
	cfg := TemplateConfig{
		Kind:  record.KindContract,
		Title: "{number}",
		Articles: []Article{
			{Title: "Intro", Text: "Client: {client.name}"},
			{Title: "Steps", Kind: KindList, Text: "one\n\n two \nthree"},
			{Title: "Empty", Text: "  "},
		},
	}
	blocks, err := Render(cfg, contractEnv())
	require.NoError(t, err)

	assert.Contains(t, blocks, layout.Paragraph{Text: "C-۱۲", Align: layout.Center, Style: layout.Title})
	assert.Contains(t, blocks, layout.Paragraph{Text: "Client: علی رضایی"})
	assert.Contains(t, blocks, layout.BulletList{Items: []string{"one", "two", "three"}})
	assert.NotContains(t, paragraphs(blocks, layout.Heading), "Empty")
}

func TestCompanyMerge(t *testing.T) {
	c := DefaultCompany().Merge(Company{Phone: "021-555"})
	assert.Equal(t, DefaultCompany().Name, c.Name)
	assert.Equal(t, "021-555", c.Phone)

	env := contractEnv()
	env.Company = Company{Name: "Acme", Phone: "021-555"}
	blocks, err := Render(ContractTemplate(), env)
	require.NoError(t, err)
	assert.Equal(t, layout.KeyValueBox{Pairs: []layout.Pair{{Key: "تلفن", Value: "۰۲۱-۵۵۵"}}}, blocks[1])
}

func TestTemplateYAMLRoundTrip(t *testing.T) {
	for _, cfg := range []TemplateConfig{ContractTemplate(), EstimateTemplate()} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, cfg))

		got, err := Load(&buf)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader(`{"kind": "estimate", "title": "T", "articles": [{"title": "A", "generator": "estimate.items"}], "signatures": [{"label": "x"}, {"label": "y"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "estimate.items", cfg.Articles[0].Generator)

	_, err = Load(strings.NewReader("kind: contract\narticles:\n  - generator: nope\n"))
	assert.ErrorIs(t, err, ErrUnknownGenerator)

	_, err = Load(strings.NewReader("kind: contract\narticles:\n  - kind: list\n    generator: contract.payment\n"))
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = Load(strings.NewReader("kind: contract\nsignatures:\n  - {label: a, resolver: who}\n  - {label: b}\n"))
	assert.ErrorIs(t, err, ErrUnknownGenerator)

	_, err = Load(strings.NewReader("kind: contract\nunknown: 1\n"))
	assert.Error(t, err)
}

func TestRegistryNames(t *testing.T) {
	names := GeneratorNames()
	assert.Contains(t, names, "contract.payment")
	assert.IsNonDecreasing(t, names)
	assert.Equal(t, []string{"account.name", "client.name", "company.name"}, ResolverNames())
}
