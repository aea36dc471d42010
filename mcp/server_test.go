package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/rtldoc"
	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/fontcache"
	"github.com/lvillar/rtldoc/record"
	"github.com/lvillar/rtldoc/store"
)

func testServer(src store.Source) *Server {
	eng := rtldoc.New(
		rtldoc.WithFontCache(fontcache.Empty()),
		rtldoc.WithClock(func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }),
	)
	s := NewServer()
	RegisterDefaultTools(s, eng, src)
	RegisterDefaultResources(s, eng)
	return s
}

func sendRequest(t *testing.T, s *Server, method string, id int, params any) jsonrpcResponse {
	t.Helper()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	require.NoError(t, err)
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output
	require.NoError(t, s.Run(context.Background()))

	var resp jsonrpcResponse
	require.NoError(t, json.Unmarshal(output.Bytes(), &resp), "response %q", output.String())
	return resp
}

// callTool calls a tool and returns the text of its first content block.
func callTool(t *testing.T, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()

	resp := sendRequest(t, s, "tools/call", 7, map[string]any{"name": name, "arguments": args})
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok, "result is not a map")
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, content)
	block := content[0].(map[string]any)
	isError, _ := result["isError"].(bool)
	return block["text"].(string), isError
}

func TestServerInitialize(t *testing.T) {
	s := testServer(nil)

	resp := sendRequest(t, s, "initialize", 1, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
	})
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, protocolVersion, result["protocolVersion"])
	assert.Equal(t, serverName, result["serverInfo"].(map[string]any)["name"])
}

func TestServerToolsList(t *testing.T) {
	resp := sendRequest(t, testServer(nil), "tools/list", 2, nil)
	require.Nil(t, resp.Error)

	tools := resp.Result.(map[string]any)["tools"].([]any)
	var names []string
	for _, tool := range tools {
		tm := tool.(map[string]any)
		names = append(names, tm["name"].(string))
		assert.NotNil(t, tm["inputSchema"])
	}
	assert.Equal(t, []string{"generate_document", "shape_text", "split_installments", "to_gregorian", "to_jalali"}, names)
}

func TestServerResourcesList(t *testing.T) {
	resp := sendRequest(t, testServer(nil), "resources/list", 3, nil)
	require.Nil(t, resp.Error)

	resources := resp.Result.(map[string]any)["resources"].([]any)
	var uris []string
	for _, r := range resources {
		uris = append(uris, r.(map[string]any)["uri"].(string))
	}
	assert.Equal(t, []string{"template://contract", "template://estimate", "template://generators"}, uris)
}

func TestServerReadTemplateResource(t *testing.T) {
	resp := sendRequest(t, testServer(nil), "resources/read", 4, map[string]any{"uri": "template://estimate"})
	require.Nil(t, resp.Error)

	contents := resp.Result.(map[string]any)["contents"].([]any)
	require.Len(t, contents, 1)
	text := contents[0].(map[string]any)["text"].(string)

	cfg, err := doctpl.Load(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, doctpl.EstimateTemplate(), cfg)
}

func TestServerPing(t *testing.T) {
	resp := sendRequest(t, testServer(nil), "ping", 4, nil)
	assert.Nil(t, resp.Error)
}

func TestServerErrors(t *testing.T) {
	s := testServer(nil)

	resp := sendRequest(t, s, "nonexistent/method", 5, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)

	resp = sendRequest(t, s, "tools/call", 6, map[string]any{"name": "nonexistent_tool", "arguments": map[string]any{}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)

	resp = sendRequest(t, s, "resources/read", 6, map[string]any{"uri": "template://invoice"})
	require.NotNil(t, resp.Error)

	var out bytes.Buffer
	s.input, s.output = strings.NewReader("{not json\n"), &out
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), `"code":-32700`)
}

func TestGenerateDocumentInline(t *testing.T) {
	s := testServer(nil)

	text, isError := callTool(t, s, "generate_document", map[string]any{
		"kind":   "contract",
		"format": "docx",
		"record": map[string]any{
			"id":          "1",
			"number":      "C-12",
			"title":       "طراحی وب‌سایت",
			"client_name": "علی رضایی",
			"amount":      10000000,
		},
	})
	require.False(t, isError, text)
	assert.Contains(t, text, "contract-C-12.docx")

	encoded := text[strings.LastIndex(text, "\n")+1:]
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestGenerateDocumentToFile(t *testing.T) {
	s := testServer(nil)
	path := filepath.Join(t.TempDir(), "estimate.pdf")

	text, isError := callTool(t, s, "generate_document", map[string]any{
		"kind":       "estimate",
		"record":     `{"id": "7", "number": "E-7", "title": "میزبانی", "client_name": "Acme", "items": [{"description": "Hosting", "quantity": 12, "unit_price": 150000}]}`,
		"outputPath": path,
	})
	require.False(t, isError, text)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestGenerateDocumentByID(t *testing.T) {
	src := store.SourceFunc(func(_ context.Context, kind record.Kind, id string) (record.Record, error) {
		if id != "1" {
			return nil, store.ErrNotFound
		}
		return &record.Contract{ID: id, Number: "C-1", ClientName: "Acme"}, nil
	})
	s := testServer(src)

	text, isError := callTool(t, s, "generate_document", map[string]any{"kind": "contract", "id": "1"})
	require.False(t, isError, text)
	assert.Contains(t, text, "contract-C-1.pdf")

	text, isError = callTool(t, s, "generate_document", map[string]any{"kind": "contract", "id": "2"})
	assert.True(t, isError)
	assert.Contains(t, text, "record not found")

	text, isError = callTool(t, testServer(nil), "generate_document", map[string]any{"kind": "contract", "id": "1"})
	assert.True(t, isError)
	assert.Contains(t, text, "no record store")
}

func TestGenerateDocumentBadArguments(t *testing.T) {
	s := testServer(nil)
	for _, args := range []map[string]any{
		{"kind": "invoice", "record": map[string]any{}},
		{"kind": "contract", "format": "odt", "record": map[string]any{}},
		{"kind": "contract"},
		{"kind": "contract", "record": map[string]any{"unknown_field": 1}},
	} {
		_, isError := callTool(t, s, "generate_document", args)
		assert.True(t, isError, "%v", args)
	}
}

func TestShapeTextTool(t *testing.T) {
	text, isError := callTool(t, testServer(nil), "shape_text", map[string]any{"text": "سلام world"})
	require.False(t, isError, text)

	var out struct {
		Visual    string `json:"visual"`
		Direction string `json:"direction"`
		Runs      []struct {
			Text      string `json:"text"`
			Direction string `json:"direction"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, "rtl", out.Direction)
	assert.True(t, strings.HasPrefix(out.Visual, "world"), out.Visual)
	assert.Len(t, out.Runs, 2)

	_, isError = callTool(t, testServer(nil), "shape_text", map[string]any{"text": "x", "base": "up"})
	assert.True(t, isError)
}

func TestDateTools(t *testing.T) {
	s := testServer(nil)

	text, isError := callTool(t, s, "to_jalali", map[string]any{"date": "2024-03-20"})
	require.False(t, isError)
	assert.Equal(t, "۱۴۰۳/۰۱/۰۱", text)

	text, _ = callTool(t, s, "to_jalali", map[string]any{"date": "2024-03-20T12:30:00Z", "withTime": true, "latinDigits": true})
	assert.Equal(t, "1403/01/01 - 12:30", text)

	_, isError = callTool(t, s, "to_jalali", map[string]any{"date": "yesterday"})
	assert.True(t, isError)

	text, isError = callTool(t, s, "to_gregorian", map[string]any{"date": "۱۴۰۳/۰۱/۰۱"})
	require.False(t, isError)
	assert.Equal(t, "2024-03-20", text)

	_, isError = callTool(t, s, "to_gregorian", map[string]any{"date": "1403/13/01"})
	assert.True(t, isError)
}

func TestSplitInstallmentsTool(t *testing.T) {
	text, isError := callTool(t, testServer(nil), "split_installments", map[string]any{
		"total": 10000000, "ratio": 0.33, "count": 2,
	})
	require.False(t, isError, text)

	var out struct {
		First struct {
			Amount    int64  `json:"amount"`
			Formatted string `json:"formatted"`
		} `json:"first"`
		Installments []struct {
			Amount int64 `json:"amount"`
		} `json:"installments"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, int64(3_300_000), out.First.Amount)
	assert.Equal(t, "۳٬۳۰۰٬۰۰۰ تومان", out.First.Formatted)
	require.Len(t, out.Installments, 2)
	assert.Equal(t, int64(3_350_000), out.Installments[0].Amount)

	_, isError = callTool(t, testServer(nil), "split_installments", map[string]any{"total": -5})
	assert.True(t, isError)
}

func TestSplitInstallmentsToolRejectsBadArguments(t *testing.T) {
	s := testServer(nil)
	for _, args := range []map[string]any{
		{"total": 1000, "ratio": "NaN", "count": 2},
		{"total": 1000, "ratio": 1.5},
		{"total": 1000, "count": "1e14"},
		{"total": 1000, "count": 2.5},
		{"total": 1000, "count": -1},
		{"total": 1000, "count": "many"},
		{"total": 1e300},
	} {
		text, isError := callTool(t, s, "split_installments", args)
		assert.True(t, isError, "%v: %s", args, text)
	}

	text, isError := callTool(t, s, "split_installments", map[string]any{"total": 1200, "count": 1200})
	require.False(t, isError, text)
	assert.Contains(t, text, `"sum": 1200`)
}

func TestToolPanicIsReported(t *testing.T) {
	s := testServer(nil)
	s.AddTool(Tool{
		Name:        "explode",
		InputSchema: map[string]any{"type": "object"},
		Handler: func(context.Context, map[string]any) (ToolResult, error) {
			var items []int
			return textResult(fmt.Sprint(items[3])), nil
		},
	})

	text, isError := callTool(t, s, "explode", nil)
	assert.True(t, isError)
	assert.Contains(t, text, "panicked")

	resp := sendRequest(t, s, "ping", 8, nil)
	assert.Nil(t, resp.Error)
}
