package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"vitalog/backend/internal/config"
)

type AIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type CompletionRequest struct {
	Model  string
	Prompt string
}

type CompletionResponse struct {
	Text  string
	Model string
	Usage AIUsage
}

// CompletionClient is the single opaque capability the synthesizer consumes:
// one prompt in, one text completion out. A failed attempt is not retried;
// the deterministic fallback covers it.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

type OpenAIResponsesClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
}

func NewOpenAIResponsesClient(cfg config.Config) *OpenAIResponsesClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 90
	}
	return &OpenAIResponsesClient{
		apiKey:          strings.TrimSpace(cfg.OpenAIAPIKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"),
		model:           strings.TrimSpace(cfg.OpenAIModel),
		maxOutputTokens: cfg.AIMaxOutputTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (c *OpenAIResponsesClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return CompletionResponse{}, errors.New("OPENAI_API_KEY is not configured")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return CompletionResponse{}, errors.New("OPENAI_BASE_URL is not configured")
	}
	requestModel := strings.TrimSpace(req.Model)
	if requestModel == "" {
		requestModel = strings.TrimSpace(c.model)
	}
	if requestModel == "" {
		return CompletionResponse{}, errors.New("OPENAI_MODEL is not configured")
	}

	maxTokens := c.maxOutputTokens
	if maxTokens < 1200 {
		maxTokens = 1200
	}
	payload := map[string]any{
		"model": requestModel,
		"input": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "input_text", "text": req.Prompt},
				},
			},
		},
		"max_output_tokens": maxTokens,
		"reasoning": map[string]any{
			"effort": "low",
		},
		"text": map[string]any{
			"verbosity": "low",
		},
	}
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return CompletionResponse{}, err
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/responses",
		bytes.NewReader(bodyRaw),
	)
	if err != nil {
		return CompletionResponse{}, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return CompletionResponse{}, err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return CompletionResponse{}, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return CompletionResponse{}, fmt.Errorf(
			"openai responses error (%d): %s",
			response.StatusCode,
			truncateForLog(string(responseBody), 600),
		)
	}

	parsed := parseJSONMap(responseBody)
	text := extractResponseText(parsed)
	if strings.TrimSpace(text) == "" {
		log.Printf("openai response had no extractable text: %s", truncateForLog(string(responseBody), 1200))
		return CompletionResponse{}, errors.New("openai response text is empty")
	}

	usageMap, _ := parsed["usage"].(map[string]any)
	usage := AIUsage{
		PromptTokens:     int(numberFromMap(usageMap, "input_tokens", "prompt_tokens")),
		CompletionTokens: int(numberFromMap(usageMap, "output_tokens", "completion_tokens")),
		TotalTokens:      int(numberFromMap(usageMap, "total_tokens")),
	}

	modelName := strings.TrimSpace(toString(parsed["model"]))
	if modelName == "" {
		modelName = requestModel
	}
	return CompletionResponse{
		Text:  text,
		Model: modelName,
		Usage: usage,
	}, nil
}

func extractResponseText(data map[string]any) string {
	direct := strings.TrimSpace(toString(data["output_text"]))
	if direct != "" {
		return direct
	}

	outputs, ok := data["output"].([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0)
	for _, item := range outputs {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		contentList, ok := block["content"].([]any)
		if !ok {
			continue
		}
		for _, contentItem := range contentList {
			contentMap, ok := contentItem.(map[string]any)
			if !ok {
				continue
			}
			contentType := strings.ToLower(strings.TrimSpace(toString(contentMap["type"])))
			if contentType != "output_text" && contentType != "text" {
				continue
			}
			if text := strings.TrimSpace(toString(contentMap["text"])); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func truncateForLog(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}

// MockCompletionClient serves local development without an API key. It echoes
// a minimal but schema-valid report.
type MockCompletionClient struct {
	Model string
}

func (m MockCompletionClient) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(m.Model)
	}
	if model == "" {
		model = "gpt-5-mini"
	}
	body := map[string]any{
		"summary": "Mock weekly report. Logged data was aggregated but no language model was consulted.",
		"sections": map[string]any{},
	}
	sections := body["sections"].(map[string]any)
	for _, key := range SectionKeys {
		sections[string(key)] = map[string]any{
			"working":   []any{},
			"suggested": []any{},
			"avoid":     []any{},
		}
	}
	encoded, _ := json.Marshal(body)
	return CompletionResponse{
		Text:  string(encoded),
		Model: model,
		Usage: AIUsage{PromptTokens: 1200, CompletionTokens: 300, TotalTokens: 1500},
	}, nil
}
