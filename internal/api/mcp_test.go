package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/pipeline"
	"github.com/aarunima248/fake-news/internal/session"
)

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	eng := testEngine(t)
	catalog := corrections.Default()
	sessions := session.NewManager(time.Minute, 0)
	return MCPDeps{
		Analyzer: pipeline.NewAnalyzer(eng, catalog, sessions),
		Catalog:  catalog,
		Version:  "test",
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestMCPTool_ClassifyNews(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpClassifyNews(deps)

	req := makeCallToolRequest("classify_news", map[string]interface{}{
		"content": "miracle miracle cure",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var resp ClassifyResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Verdict != "fake" {
		t.Errorf("verdict = %q, want %q", resp.Verdict, "fake")
	}
	if resp.Confidence == nil {
		t.Error("confidence = nil, want a value")
	}
}

func TestMCPTool_ClassifyNews_MissingContent(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpClassifyNews(deps)

	result, err := handler(context.Background(), makeCallToolRequest("classify_news", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for missing content")
	}
}

func TestMCPTool_ClassifyNews_EmptyContent(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpClassifyNews(deps)

	result, err := handler(context.Background(), makeCallToolRequest("classify_news", map[string]interface{}{
		"content": "   ",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for empty content")
	}
}

func TestMCPTool_ClassifyNews_SourceEchoed(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpClassifyNews(deps)

	req := makeCallToolRequest("classify_news", map[string]interface{}{
		"content": "breaking study",
		"source":  "whatsapp",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var resp struct {
		Source session.Source `json:"source"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Source != session.SourceWhatsApp {
		t.Errorf("source = %q, want %q", resp.Source, session.SourceWhatsApp)
	}
}

func TestMCPTool_ClassifyNews_InvalidSource(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpClassifyNews(deps)

	result, err := handler(context.Background(), makeCallToolRequest("classify_news", map[string]interface{}{
		"content": "breaking study",
		"source":  "telegraph",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for an unknown source")
	}
}

func TestMCPTool_ClassifyNews_IncludesCorrection(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpClassifyNews(deps)

	req := makeCallToolRequest("classify_news", map[string]interface{}{
		"content": "Experts agree the earth is flat, miracle study shows",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp ClassifyResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Correction == nil {
		t.Fatal("correction = nil, want the flat earth entry")
	}
	if resp.Correction.Topic != "science" {
		t.Errorf("correction topic = %q, want %q", resp.Correction.Topic, "science")
	}
}

func TestMCPTool_FindCorrection(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpFindCorrection(deps)

	req := makeCallToolRequest("find_correction", map[string]interface{}{
		"content": "They said 5G CAUSES COVID in the group chat",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var resp struct {
		Found      bool               `json:"found"`
		Correction *corrections.Entry `json:"correction"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Found || resp.Correction == nil {
		t.Fatalf("response = %+v, want a found correction", resp)
	}
	if resp.Correction.Topic != "technology" {
		t.Errorf("correction topic = %q, want %q", resp.Correction.Topic, "technology")
	}
}

func TestMCPTool_FindCorrection_NoMatch(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpFindCorrection(deps)

	req := makeCallToolRequest("find_correction", map[string]interface{}{
		"content": "city council approves new bike lane",
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Found bool `json:"found"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Found {
		t.Error("found = true, want false for clean content")
	}
}

func TestMCPResource_Catalog(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpResourceCatalog(deps)

	contents, err := handler(context.Background(), makeReadResourceRequest("corrections://catalog"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}

	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	var entries []corrections.Entry
	if err := json.Unmarshal([]byte(text.Text), &entries); err != nil {
		t.Fatalf("failed to parse catalog: %v", err)
	}
	if len(entries) != deps.Catalog.Len() {
		t.Errorf("entries = %d, want %d", len(entries), deps.Catalog.Len())
	}
}

func TestNewMCPServer(t *testing.T) {
	if s := NewMCPServer(newTestMCPDeps(t)); s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}
