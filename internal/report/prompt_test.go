package report

import (
	"strings"
	"testing"
)

func TestParseReportResponseStrictJSON(t *testing.T) {
	raw := `{"summary": "good week", "wins": ["hydration"], "sections": {"nutrition": {"working": [{"name": "protein", "reason": "high"}], "suggested": [], "avoid": []}}}`
	parsed, err := parseReportResponse(raw)
	if err != nil {
		t.Fatalf("expected strict parse to succeed: %v", err)
	}
	if parsed.Summary != "good week" || len(parsed.Wins) != 1 {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
	sections := sectionsFromLLM(parsed)
	if len(sections.Nutrition.Working) != 1 || sections.Nutrition.Working[0].Name != "protein" {
		t.Fatalf("unexpected sections mapping: %+v", sections.Nutrition)
	}
}

func TestParseReportResponseStripsFences(t *testing.T) {
	raw := "Here is the report:\n```json\n{\"summary\": \"wrapped\"}\n```\nHope that helps!"
	parsed, err := parseReportResponse(raw)
	if err != nil {
		t.Fatalf("expected fenced response to parse: %v", err)
	}
	if parsed.Summary != "wrapped" {
		t.Fatalf("unexpected summary: %q", parsed.Summary)
	}
}

func TestParseReportResponseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "no braces at all", "{broken"} {
		if _, err := parseReportResponse(raw); err == nil {
			t.Fatalf("expected %q to fail parsing", raw)
		}
	}
}

func TestSectionsFromLLMIgnoresUnknownKeys(t *testing.T) {
	parsed := llmReport{
		Sections: map[string]SectionBuckets{
			"nutrition":   {Working: []InsightItem{{Name: "x", Reason: "y"}}},
			"made-up-key": {Working: []InsightItem{{Name: "stray", Reason: "z"}}},
		},
	}
	sections := sectionsFromLLM(parsed)
	if len(sections.Nutrition.Working) != 1 {
		t.Fatalf("expected known key mapped, got %+v", sections.Nutrition)
	}
	for _, key := range SectionKeys {
		if key == SectionNutrition {
			continue
		}
		buckets := sections.Buckets(key)
		if len(buckets.Working)+len(buckets.Suggested)+len(buckets.Avoid) != 0 {
			t.Fatalf("expected section %s empty, got %+v", key, buckets)
		}
	}
}

func TestBuildReportPromptEmbedsPayload(t *testing.T) {
	prompt := buildReportPrompt(`{"userId":"u1"}`)
	if !strings.Contains(prompt, `{"userId":"u1"}`) {
		t.Fatalf("expected payload embedded in prompt")
	}
	if !strings.Contains(prompt, "exactly one JSON object") {
		t.Fatalf("expected response contract in prompt")
	}
}
