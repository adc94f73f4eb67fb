package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method  string
	Path    string
	Body    string
	Auth    string
	Session string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.RequestURI(),
			Body:    body.String(),
			Auth:    r.Header.Get("Authorization"),
			Session: r.Header.Get("X-Session-ID"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		sessionID:  "test-session",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestAnalyzeRequest_RecordsVerdict(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/analyze": `{"record":{"id":"r1","content_id":"abc123","content":"miracle cure","source":"twitter","prediction":"fake","confidence":87.5,"timestamp":"2025-06-01T10:00:00Z","metadata":{"author":"jdoe","share_count":3,"content_length":12,"word_count":2}}}`,
	})

	client := ts.client()

	req := map[string]any{
		"content":     "miracle cure",
		"source":      "twitter",
		"author":      "jdoe",
		"share_count": 3,
	}
	resp, err := client.post(ctx, "/api/analyze", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var analysis struct {
		Record struct {
			Prediction string   `json:"prediction"`
			Confidence *float64 `json:"confidence"`
			Source     string   `json:"source"`
		} `json:"record"`
	}
	if err := decodeJSON(resp, &analysis); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if analysis.Record.Prediction != "fake" {
		t.Errorf("prediction = %q, want fake", analysis.Record.Prediction)
	}
	if analysis.Record.Confidence == nil || *analysis.Record.Confidence != 87.5 {
		t.Errorf("confidence = %v, want 87.5", analysis.Record.Confidence)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	r := ts.requests[0]
	if r.Method != "POST" {
		t.Errorf("method = %q, want POST", r.Method)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}
	if r.Session != "test-session" {
		t.Errorf("session header = %q, want test-session", r.Session)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["content"] != "miracle cure" {
		t.Errorf("body.content = %v, want miracle cure", body["content"])
	}
	if body["source"] != "twitter" {
		t.Errorf("body.source = %v, want twitter", body["source"])
	}
	if body["share_count"] != float64(3) {
		t.Errorf("body.share_count = %v, want 3", body["share_count"])
	}
}

func TestAnalyzeCommand_NoContent(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"analyze"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing content")
	}
	if !strings.Contains(err.Error(), "no content") {
		t.Errorf("error = %q, want it to mention 'no content'", err.Error())
	}
}

func TestClassifyWithoutRecording(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /api/classify": `{"verdict":"real","confidence":64.2}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/api/classify", map[string]any{"content": "the study was peer reviewed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Verdict    string   `json:"verdict"`
		Confidence *float64 `json:"confidence"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if result.Verdict != "real" {
		t.Errorf("verdict = %q, want real", result.Verdict)
	}
	if result.Confidence == nil || *result.Confidence != 64.2 {
		t.Errorf("confidence = %v, want 64.2", result.Confidence)
	}
}

func TestExportCommand_FormatEncoded(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /api/export": `[]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/api/export?format="+url.QueryEscape("csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if !strings.Contains(ts.requests[0].Path, "format=csv") {
		t.Errorf("path = %q, want it to carry format=csv", ts.requests[0].Path)
	}
}

func TestStatsCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /api/stats": `{"total":4,"real":3,"fake":1,"real_pct":75,"fake_pct":25,"avg_confidence":81.3}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/api/stats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stats struct {
		Total         int      `json:"total"`
		Real          int      `json:"real"`
		Fake          int      `json:"fake"`
		AvgConfidence *float64 `json:"avg_confidence"`
	}
	if err := decodeJSON(resp, &stats); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.Real != 3 || stats.Fake != 1 {
		t.Errorf("real/fake = %d/%d, want 3/1", stats.Real, stats.Fake)
	}
	if stats.AvgConfidence == nil || *stats.AvgConfidence != 81.3 {
		t.Errorf("avg_confidence = %v, want 81.3", stats.AvgConfidence)
	}
}

func TestClearCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"DELETE /api/records": `{"status":"cleared"}`,
	})

	client := ts.client()
	resp, err := client.delete(ctx, "/api/records")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["status"] != "cleared" {
		t.Errorf("status = %q, want cleared", result["status"])
	}
	if ts.requests[0].Method != "DELETE" {
		t.Errorf("method = %q, want DELETE", ts.requests[0].Method)
	}
}

func TestCorrectionsList(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /api/corrections": `{"corrections":[{"pattern":"5g towers spread covid","correction":"No evidence links 5G to illness.","topic":"health"}]}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/api/corrections")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Corrections []struct {
			Pattern    string `json:"pattern"`
			Correction string `json:"correction"`
		} `json:"corrections"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(payload.Corrections) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(payload.Corrections))
	}
	if payload.Corrections[0].Pattern != "5g towers spread covid" {
		t.Errorf("pattern = %q, want 5g towers spread covid", payload.Corrections[0].Pattern)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"missing or invalid bearer token","type":"authentication_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/api/stats")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	err = decodeJSON(resp, &struct{}{})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
	if !strings.Contains(err.Error(), "missing or invalid bearer token") {
		t.Errorf("error = %q, want the envelope message unwrapped", err.Error())
	}
}

func TestResolveContent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "article.txt")
	if err := os.WriteFile(file, []byte("  taxes fund roads  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveContent([]string{"positional wins"}, "flag text", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "positional wins" {
		t.Errorf("content = %q, want positional argument", got)
	}

	got, err = resolveContent(nil, "flag text", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "flag text" {
		t.Errorf("content = %q, want --text value", got)
	}

	got, err = resolveContent(nil, "", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "taxes fund roads" {
		t.Errorf("content = %q, want trimmed file text", got)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"abcdef0123456789abcdef", "abcdef012345"},
		{"short", "short"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := shortID(tt.id); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
