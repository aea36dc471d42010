package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lvillar/rtldoc"
	"github.com/lvillar/rtldoc/persian"
	"github.com/lvillar/rtldoc/record"
	"github.com/lvillar/rtldoc/rtl"
	"github.com/lvillar/rtldoc/store"
)

// Bounds of split_installments arguments.
const (
	maxInstallments = 1200
	maxAmount       = 1 << 53
)

// errNoSource is returned by generate_document for an id without a store.
var errNoSource = errors.New("no record store configured; pass the record inline")

type toolkit struct {
	engine *rtldoc.Engine
	source store.Source
}

// RegisterDefaultTools adds the generation and text tools to the server.
// src may be nil, in which case documents can only be generated from
// inline records.
func RegisterDefaultTools(s *Server, eng *rtldoc.Engine, src store.Source) {
	k := &toolkit{engine: eng, source: src}
	s.AddTool(k.generateDocumentTool())
	s.AddTool(shapeTextTool())
	s.AddTool(toJalaliTool())
	s.AddTool(toGregorianTool())
	s.AddTool(splitInstallmentsTool())
}

func (k *toolkit) generateDocumentTool() Tool {
	return Tool{
		Name:        "generate_document",
		Description: "Generate a Persian contract or estimate as PDF or DOCX. Pass the record inline as a JSON object, or its id when a record store is configured. Returns the document as base64 unless outputPath is set.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"enum":        []string{string(record.KindContract), string(record.KindEstimate)},
					"description": "Document type",
				},
				"format": map[string]any{
					"type":        "string",
					"enum":        []string{string(rtldoc.FormatPDF), string(rtldoc.FormatDOCX)},
					"description": "Output format, pdf when omitted",
				},
				"record": map[string]any{
					"type":        "object",
					"description": "The contract or estimate record",
				},
				"id": map[string]any{
					"type":        "string",
					"description": "Record id in the configured store",
				},
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the document. If omitted, returns base64.",
				},
			},
			"required": []string{"kind"},
		},
		Handler: k.handleGenerateDocument,
	}
}

func (k *toolkit) handleGenerateDocument(ctx context.Context, args map[string]any) (ToolResult, error) {
	kind, err := record.ParseKind(stringArg(args, "kind"))
	if err != nil {
		return ToolResult{}, err
	}
	format := rtldoc.FormatPDF
	if f := stringArg(args, "format"); f != "" {
		if format, err = rtldoc.ParseFormat(f); err != nil {
			return ToolResult{}, err
		}
	}

	var res *rtldoc.Result
	switch id := stringArg(args, "id"); {
	case args["record"] != nil:
		raw, err := rawArg(args["record"])
		if err != nil {
			return ToolResult{}, fmt.Errorf("encoding record: %w", err)
		}
		rec, err := record.Decode(kind, bytes.NewReader(raw))
		if err != nil {
			return ToolResult{}, err
		}
		res, err = k.engine.Generate(ctx, rec, format)
		if err != nil {
			return ToolResult{}, err
		}
	case id != "":
		if k.source == nil {
			return ToolResult{}, errNoSource
		}
		res, err = k.engine.GenerateByID(ctx, k.source, kind, id, format)
		if err != nil {
			return ToolResult{}, err
		}
	default:
		return ToolResult{}, fmt.Errorf("missing 'record' or 'id' argument")
	}

	if outputPath := stringArg(args, "outputPath"); outputPath != "" {
		if err := os.WriteFile(outputPath, res.Data, 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult(fmt.Sprintf("Document created successfully: %s (%d bytes, %d pages)",
			outputPath, len(res.Data), res.Pages)), nil
	}

	encoded := base64.StdEncoding.EncodeToString(res.Data)
	return textResult(fmt.Sprintf("Document %s created successfully (%s, %d bytes, %d pages). Base64 data:\n%s",
		res.Filename, res.ContentType, len(res.Data), res.Pages, encoded)), nil
}

func shapeTextTool() Tool {
	return Tool{
		Name:        "shape_text",
		Description: "Shape mixed Persian/Latin text for display: resolve bidirectional runs and apply Arabic contextual forms. Returns the visual string and its runs.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text in logical order",
				},
				"base": map[string]any{
					"type":        "string",
					"enum":        []string{"auto", "rtl", "ltr"},
					"description": "Paragraph direction, detected from the first strong character when auto",
				},
			},
			"required": []string{"text"},
		},
		Handler: handleShapeText,
	}
}

type shapedRun struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
	Level     int    `json:"level"`
	Logical   int    `json:"logical"`
}

func handleShapeText(_ context.Context, args map[string]any) (ToolResult, error) {
	text, ok := args["text"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'text' argument")
	}
	base := rtl.Auto
	switch strings.ToLower(stringArg(args, "base")) {
	case "", "auto":
	case "rtl":
		base = rtl.RTL
	case "ltr":
		base = rtl.LTR
	default:
		return ToolResult{}, fmt.Errorf("invalid 'base' argument %q", stringArg(args, "base"))
	}

	shaper := rtl.NewShaper(rtl.WithBase(base))
	runs := shaper.Shape(text)
	out := struct {
		Visual    string      `json:"visual"`
		Direction string      `json:"direction"`
		Runs      []shapedRun `json:"runs"`
	}{
		Visual:    shaper.Visual(text),
		Direction: rtl.BaseDirection(text).String(),
		Runs:      make([]shapedRun, 0, len(runs)),
	}
	if base != rtl.Auto {
		out.Direction = base.String()
	}
	for _, r := range runs {
		out.Runs = append(out.Runs, shapedRun{r.Text, r.Direction.String(), r.Level, r.Logical})
	}
	return jsonResult(out)
}

func toJalaliTool() Tool {
	return Tool{
		Name:        "to_jalali",
		Description: "Convert an ISO-8601 date or timestamp to a Jalali (Solar Hijri) date in Persian digits.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type":        "string",
					"description": "ISO-8601 date, e.g. 2024-03-20 or 2024-03-20T12:00:00Z",
				},
				"withTime": map[string]any{
					"type":        "boolean",
					"description": "Append the wall-clock time",
				},
				"latinDigits": map[string]any{
					"type":        "boolean",
					"description": "Use ASCII digits instead of Persian digits",
				},
			},
			"required": []string{"date"},
		},
		Handler: handleToJalali,
	}
}

func handleToJalali(_ context.Context, args map[string]any) (ToolResult, error) {
	date := stringArg(args, "date")
	if date == "" {
		return ToolResult{}, fmt.Errorf("missing 'date' argument")
	}
	out := persian.ParseToJalali(date)
	if boolArg(args, "withTime") {
		out = persian.ParseToJalaliDateTime(date)
	}
	if out == persian.Sentinel {
		return ToolResult{}, fmt.Errorf("unrecognized date %q", date)
	}
	if boolArg(args, "latinDigits") {
		out = persian.LatinDigits(out)
	}
	return textResult(out), nil
}

func toGregorianTool() Tool {
	return Tool{
		Name:        "to_gregorian",
		Description: "Convert a Jalali date (yyyy/mm/dd, Persian or ASCII digits) to an ISO-8601 Gregorian date.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type":        "string",
					"description": "Jalali date, e.g. 1403/01/01",
				},
			},
			"required": []string{"date"},
		},
		Handler: handleToGregorian,
	}
}

func handleToGregorian(_ context.Context, args map[string]any) (ToolResult, error) {
	date := stringArg(args, "date")
	parts := strings.FieldsFunc(persian.LatinDigits(date), func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return ToolResult{}, fmt.Errorf("unrecognized Jalali date %q", date)
	}
	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ToolResult{}, fmt.Errorf("unrecognized Jalali date %q", date)
		}
		ymd[i] = n
	}
	if ymd[1] < 1 || ymd[1] > 12 || ymd[2] < 1 || ymd[2] > 31 || (ymd[1] > 6 && ymd[2] > 30) {
		return ToolResult{}, fmt.Errorf("Jalali date %q out of range", date)
	}
	gy, gm, gd := persian.JalaliToGregorian(ymd[0], ymd[1], ymd[2])
	return textResult(fmt.Sprintf("%04d-%02d-%02d", gy, gm, gd)), nil
}

func splitInstallmentsTool() Tool {
	return Tool{
		Name:        "split_installments",
		Description: "Split an amount into an upfront payment and equal installments, with amounts formatted in Persian.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"total": map[string]any{
					"type":        "integer",
					"description": "Total amount in whole currency units",
				},
				"ratio": map[string]any{
					"type":        "number",
					"minimum":     0,
					"maximum":     1,
					"description": "Upfront share of the total, between 0 and 1",
				},
				"count": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"maximum":     maxInstallments,
					"description": "Number of installments after the upfront payment",
				},
				"currency": map[string]any{
					"type":        "string",
					"description": "IRT (toman, default), IRR, USD or EUR",
				},
			},
			"required": []string{"total"},
		},
		Handler: handleSplitInstallments,
	}
}

func handleSplitInstallments(_ context.Context, args map[string]any) (ToolResult, error) {
	total, ok := numberArg(args, "total")
	if !ok || total < 0 || total > maxAmount || total != math.Trunc(total) {
		return ToolResult{}, fmt.Errorf("'total' must be an integer between 0 and %d", int64(maxAmount))
	}
	ratio, ok := numberArg(args, "ratio")
	if _, given := args["ratio"]; given && (!ok || math.IsNaN(ratio) || ratio < 0 || ratio > 1) {
		return ToolResult{}, fmt.Errorf("'ratio' must be a number between 0 and 1")
	}
	count, ok := numberArg(args, "count")
	if _, given := args["count"]; given && (!ok || count < 0 || count > maxInstallments || count != math.Trunc(count)) {
		return ToolResult{}, fmt.Errorf("'count' must be an integer between 0 and %d", maxInstallments)
	}
	cur := persian.Toman
	if c := stringArg(args, "currency"); c != "" {
		cur = persian.Currency(strings.ToUpper(c))
	}

	s := persian.SplitInstallments(int64(total), ratio, int(count))
	type payment struct {
		Amount    int64  `json:"amount"`
		Formatted string `json:"formatted"`
	}
	out := struct {
		Total        payment   `json:"total"`
		First        payment   `json:"first"`
		Installments []payment `json:"installments"`
		Sum          int64     `json:"sum"`
	}{
		Total:        payment{s.Total, persian.FormatCurrency(s.Total, cur, true)},
		First:        payment{s.First, persian.FormatCurrency(s.First, cur, true)},
		Installments: make([]payment, 0, len(s.Installments)),
		Sum:          s.Sum(),
	}
	for _, v := range s.Installments {
		out.Installments = append(out.Installments, payment{v, persian.FormatCurrency(v, cur, true)})
	}
	return jsonResult(out)
}

func jsonResult(v any) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(string(data)), nil
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

// numberArg reads a JSON number. Numeric strings are accepted too.
func numberArg(args map[string]any, name string) (float64, bool) {
	switch v := args[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(persian.LatinDigits(strings.TrimSpace(v)), 64)
		return f, err == nil
	}
	return 0, false
}

// rawArg returns v as JSON. A string argument is taken as JSON text.
func rawArg(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(v)
}
