package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testResponsesClient(baseURL string) *OpenAIResponsesClient {
	return &OpenAIResponsesClient{
		apiKey:          "test",
		baseURL:         baseURL,
		model:           "gpt-5-mini",
		maxOutputTokens: 2400,
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

func TestOpenAIResponsesClientParsesOutput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model":"gpt-5-mini-2026",
			"output":[{"content":[{"type":"output_text","text":"{\"summary\":\"ok\"}"}]}],
			"usage":{"input_tokens":100,"output_tokens":40,"total_tokens":140}
		}`))
	}))
	defer server.Close()

	client := testResponsesClient(server.URL)
	resp, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-5-mini", Prompt: "weekly report"})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.Text != `{"summary":"ok"}` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Model != "gpt-5-mini-2026" {
		t.Fatalf("unexpected model: %q", resp.Model)
	}
	if resp.Usage.TotalTokens != 140 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestOpenAIResponsesClientEnforcesTokenFloor(t *testing.T) {
	t.Parallel()

	var receivedMaxTokens float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request payload: %v", err)
		}
		receivedMaxTokens = numberFromMap(payload, "max_output_tokens")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model":"gpt-5-mini",
			"output":[{"content":[{"type":"output_text","text":"ok"}]}],
			"usage":{"total_tokens":10}
		}`))
	}))
	defer server.Close()

	client := testResponsesClient(server.URL)
	client.maxOutputTokens = 100

	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if receivedMaxTokens != 1200 {
		t.Fatalf("expected token floor 1200, got %v", receivedMaxTokens)
	}
}

func TestOpenAIResponsesClientErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream issue"}}`))
	}))
	defer server.Close()

	client := testResponsesClient(server.URL)
	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestOpenAIResponsesClientEmptyOutput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-5-mini","output":[]}`))
	}))
	defer server.Close()

	client := testResponsesClient(server.URL)
	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error when no text can be extracted")
	}
}

func TestOpenAIResponsesClientRequiresConfig(t *testing.T) {
	t.Parallel()

	client := &OpenAIResponsesClient{httpClient: &http.Client{}}
	if _, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error without an API key")
	}
}

func TestMockCompletionClientIsSchemaValid(t *testing.T) {
	t.Parallel()

	resp, err := MockCompletionClient{}.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("mock complete failed: %v", err)
	}
	parsed, err := parseReportResponse(resp.Text)
	if err != nil {
		t.Fatalf("mock response must parse as a report: %v", err)
	}
	if len(parsed.Sections) != len(SectionKeys) {
		t.Fatalf("expected all %d sections, got %d", len(SectionKeys), len(parsed.Sections))
	}
}

func TestExtractResponseTextDirectField(t *testing.T) {
	data := map[string]any{"output_text": "direct"}
	if got := extractResponseText(data); got != "direct" {
		t.Fatalf("expected direct output_text, got %q", got)
	}
}
