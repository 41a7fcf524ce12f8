package report

import (
	"testing"
	"time"
)

func TestSummarizeHydration(t *testing.T) {
	logs := []WaterLog{
		{LoggedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), Label: "Water", AmountML: 500},
		{LoggedAt: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), Label: "Tea", AmountML: 300},
		{LoggedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Label: "water", AmountML: 1200},
	}

	summary := summarizeHydration(logs, time.UTC)
	if summary.TotalML != 2000 {
		t.Fatalf("expected 2000ml total, got %v", summary.TotalML)
	}
	if summary.DaysWithData != 2 || summary.DailyAvgML != 1000 {
		t.Fatalf("expected 1000ml daily average over 2 days, got %v over %d", summary.DailyAvgML, summary.DaysWithData)
	}
	if len(summary.TopDrinks) != 2 || summary.TopDrinks[0].Name != "Water" || summary.TopDrinks[0].Count != 2 {
		t.Fatalf("unexpected top drinks: %+v", summary.TopDrinks)
	}
}

func TestSummarizeActivity(t *testing.T) {
	logs := []ExerciseLog{
		{LoggedAt: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC), Activity: "Run", Minutes: 30},
		{LoggedAt: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC), Activity: "Walk", Minutes: 15},
		{LoggedAt: time.Date(2026, 3, 3, 7, 0, 0, 0, time.UTC), Activity: "Run", Minutes: 45},
	}

	summary := summarizeActivity(logs, time.UTC)
	if summary.ActiveDays != 2 {
		t.Fatalf("expected 2 active days, got %d", summary.ActiveDays)
	}
	if summary.TotalMinutes != 90 || summary.DailyAvgMinutes != 45 {
		t.Fatalf("unexpected minutes: total=%v avg=%v", summary.TotalMinutes, summary.DailyAvgMinutes)
	}
	if summary.TopActivities[0].Name != "Run" || summary.TopActivities[0].Count != 2 {
		t.Fatalf("unexpected top activities: %+v", summary.TopActivities)
	}
}

func TestSummarizeLabs(t *testing.T) {
	results := []LabResult{
		{CollectedAt: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), Name: "Ferritin", Value: 48, Unit: "ng/mL"},
		{CollectedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Name: "ferritin", Value: 40, Unit: "ng/mL"},
		{CollectedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Name: "Glucose", Value: 92, Unit: "mg/dL"},
	}

	summary := summarizeLabs(results)
	if len(summary.Trends) != 2 {
		t.Fatalf("expected 2 analytes, got %+v", summary.Trends)
	}
	ferritin := summary.Trends[0]
	if ferritin.Name != "Ferritin" || ferritin.First != 40 || ferritin.Last != 48 {
		t.Fatalf("expected chronological ordering within analyte, got %+v", ferritin)
	}
	if ferritin.Delta != 8 || ferritin.Direction != "up" {
		t.Fatalf("unexpected ferritin trend: %+v", ferritin)
	}
	if len(summary.Highlights) != 1 || summary.Highlights[0] != "Ferritin: 40 to 48 ng/mL" {
		t.Fatalf("single-point analytes must not highlight, got %+v", summary.Highlights)
	}
}

func TestSummarizeChat(t *testing.T) {
	messages := []ChatMessage{
		{SentAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), Role: "user", Content: "slept badly"},
		{SentAt: time.Date(2026, 3, 1, 9, 1, 0, 0, time.UTC), Role: "assistant", Content: "sorry to hear"},
		{SentAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Role: "User", Content: "feeling better"},
	}

	summary := summarizeChat(messages, time.UTC)
	if summary.Entries != 3 || summary.UserMessages != 2 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if len(summary.Highlights) != 2 || summary.Highlights[0] != "slept badly" {
		t.Fatalf("expected user-message highlights only, got %+v", summary.Highlights)
	}
	if len(summary.ByDay) != 2 || summary.ByDay[0].Count != 2 {
		t.Fatalf("unexpected by-day counts: %+v", summary.ByDay)
	}
}

func TestSummarizeJournal(t *testing.T) {
	entries := []JournalEntry{
		{LoggedAt: time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC), Text: "long hike today", Tags: []string{"outdoors", "Exercise"}},
		{LoggedAt: time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC), Text: "quiet evening", Tags: []string{"rest"}},
	}

	summary := summarizeJournal(entries, time.UTC)
	if summary.Entries != 2 {
		t.Fatalf("expected 2 entries, got %d", summary.Entries)
	}
	if len(summary.Highlights) != 2 || summary.Highlights[0].Day != "2026-03-01" {
		t.Fatalf("expected chronological highlights, got %+v", summary.Highlights)
	}
	if len(summary.TopTags) != 3 {
		t.Fatalf("expected 3 tags, got %+v", summary.TopTags)
	}
}

func TestSnippetOfTruncatesLongText(t *testing.T) {
	long := make([]rune, 0, 400)
	for idx := 0; idx < 400; idx++ {
		long = append(long, 'a')
	}
	snippet := snippetOf(string(long))
	if len([]rune(snippet)) != highlightSnippetRune+3 {
		t.Fatalf("expected truncation to %d runes plus ellipsis, got %d", highlightSnippetRune, len([]rune(snippet)))
	}
}
