package report

import (
	"testing"
	"time"
)

func moodAt(day int, rating float64) MoodLog {
	return MoodLog{
		ID:       time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC).Format("20060102150405"),
		LoggedAt: time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC),
		Rating:   rating,
	}
}

func TestSummarizeMoodTrendUp(t *testing.T) {
	logs := []MoodLog{
		moodAt(1, 2), moodAt(2, 2), moodAt(3, 2),
		moodAt(4, 3), moodAt(5, 3), moodAt(6, 3),
	}

	summary := summarizeMood(logs, time.UTC)
	if summary.Average == nil || *summary.Average != 2.5 {
		t.Fatalf("unexpected mood average: %v", summary.Average)
	}
	if summary.Trend == nil {
		t.Fatalf("expected a trend with 6 days of data")
	}
	if summary.Trend.Direction != "up" {
		t.Fatalf("expected upward trend, got %q", summary.Trend.Direction)
	}
	if summary.Trend.Change != 1.0 {
		t.Fatalf("expected change 1.0, got %v", summary.Trend.Change)
	}
}

func TestSummarizeMoodSingleDayHasNoTrend(t *testing.T) {
	summary := summarizeMood([]MoodLog{moodAt(1, 4), moodAt(1, 5)}, time.UTC)
	if summary.Trend != nil {
		t.Fatalf("one day of data must not trend, got %+v", summary.Trend)
	}
	if len(summary.Daily) != 1 || summary.Daily[0].Value != 4.5 {
		t.Fatalf("expected one daily average of 4.5, got %+v", summary.Daily)
	}
}

func TestSummarizeMoodFlatUnderThreshold(t *testing.T) {
	logs := []MoodLog{moodAt(1, 3), moodAt(2, 3), moodAt(3, 3.2)}
	summary := summarizeMood(logs, time.UTC)
	if summary.Trend == nil || summary.Trend.Direction != "flat" {
		t.Fatalf("expected flat trend under threshold, got %+v", summary.Trend)
	}
}

func TestSummarizeSymptoms(t *testing.T) {
	logs := []SymptomLog{
		{LoggedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Name: "Headache"},
		{LoggedAt: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), Name: "headache"},
		{LoggedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), Name: "Bloating"},
	}

	summary := summarizeSymptoms(logs, time.UTC)
	if summary.Entries != 3 {
		t.Fatalf("expected 3 entries, got %d", summary.Entries)
	}
	if len(summary.TopSymptoms) != 2 || summary.TopSymptoms[0].Name != "Headache" || summary.TopSymptoms[0].Count != 2 {
		t.Fatalf("unexpected top symptoms: %+v", summary.TopSymptoms)
	}
	if len(summary.ByDay) != 2 || summary.ByDay[0].Count != 2 {
		t.Fatalf("unexpected by-day counts: %+v", summary.ByDay)
	}
}
