package report

import (
	"encoding/json"
	"errors"
	"strings"
)

// The fixed rule block sent ahead of the budgeted payload. The response
// contract is a single JSON object; anything else is handled by the
// defensive parser below.
const reportPromptRules = `You are a health coach writing a weekly report from a user's own tracked data.

Rules:
1. Use only the data in the JSON payload below. Never invent measurements, foods, symptoms, or events.
2. Respond with exactly one JSON object and nothing else: no prose, no markdown fences.
3. The object has the shape {"summary": string, "wins": string[], "gaps": string[], "sections": {...}}.
4. "sections" must contain exactly these keys: overview, nutrition, hydration, exercise, mood, symptoms, lifestyle, labs, journal, goals.
5. Each section is {"working": Item[], "suggested": Item[], "avoid": Item[]} where Item is {"name": string, "reason": string}.
6. Leave a bucket as an empty array when the data does not support it. Empty is better than invented.
7. "summary" is 3-5 plain sentences, encouraging but factual, referencing concrete numbers from the payload.
8. This is not medical advice; do not diagnose. Suggest seeing a clinician only when lab or symptom data clearly warrants it.

Payload:
`

func buildReportPrompt(payload string) string {
	return reportPromptRules + payload
}

// llmReport is the parsed shape of a model response.
type llmReport struct {
	Summary  string                    `json:"summary"`
	Wins     []string                  `json:"wins"`
	Gaps     []string                  `json:"gaps"`
	Sections map[string]SectionBuckets `json:"sections"`
}

var errUnparseableResponse = errors.New("model response is not a JSON report")

// parseReportResponse tries strict JSON first, then falls back to the
// substring between the first '{' and the last '}' for models that wrap the
// object in prose or fences.
func parseReportResponse(text string) (llmReport, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return llmReport{}, errUnparseableResponse
	}

	var parsed llmReport
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return llmReport{}, errUnparseableResponse
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err != nil {
		return llmReport{}, errUnparseableResponse
	}
	return parsed, nil
}

// sectionsFromLLM maps the loosely-keyed response onto the fixed section
// struct; unknown keys are ignored.
func sectionsFromLLM(parsed llmReport) Sections {
	sections := Sections{}
	for _, key := range SectionKeys {
		if buckets, ok := parsed.Sections[string(key)]; ok {
			*sections.Buckets(key) = buckets
		}
	}
	return sections
}
