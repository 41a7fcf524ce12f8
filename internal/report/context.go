package report

import "time"

// DomainSummaries collects every per-domain summary for one period.
type DomainSummaries struct {
	Nutrition NutritionSummary `json:"nutrition"`
	Hydration HydrationSummary `json:"hydration"`
	Activity  ActivitySummary  `json:"activity"`
	Mood      MoodSummary      `json:"mood"`
	Symptoms  SymptomSummary   `json:"symptoms"`
	Checkins  CheckinSummary   `json:"checkins"`
	Labs      LabSummary       `json:"labs"`
	Chat      ChatSummary      `json:"chat"`
	Journal   JournalSummary   `json:"journal"`
}

// WeekContext is the consolidated artifact of the aggregation pipeline: the
// daily stat sequence, the domain summaries, the derived signals and the
// ranked insight candidates. It feeds both the model payload and the
// deterministic fallback.
type WeekContext struct {
	UserID         string             `json:"userId"`
	Timezone       string             `json:"timezone"`
	PeriodStart    string             `json:"periodStart"`
	PeriodEnd      string             `json:"periodEnd"`
	DailyStats     []DailyStat        `json:"dailyStats"`
	Summaries      DomainSummaries    `json:"summaries"`
	Signals        SignalBundle       `json:"signals"`
	Candidates     []InsightCandidate `json:"insightCandidates"`
	DroppedRecords int                `json:"droppedRecords,omitempty"`
}

// buildWeekContext runs summarization, aggregation, signal derivation and
// candidate generation over one period's raw logs.
func buildWeekContext(userID, timezone string, periodStart, periodEnd time.Time, logs WeekLogs, cfg SignalConfig) WeekContext {
	loc := loadLocation(timezone)

	summaries := DomainSummaries{
		Nutrition: summarizeNutrition(logs.Food, loc),
		Hydration: summarizeHydration(logs.Water, loc),
		Activity:  summarizeActivity(logs.Exercise, loc),
		Mood:      summarizeMood(logs.Mood, loc),
		Symptoms:  summarizeSymptoms(logs.Symptoms, loc),
		Checkins:  summarizeCheckins(logs.Checkins),
		Labs:      summarizeLabs(logs.Labs),
		Chat:      summarizeChat(logs.Chat, loc),
		Journal:   summarizeJournal(logs.Journal, loc),
	}

	stats, dropped := aggregateDailyStats(logs, loc)
	signals := buildSignals(stats, summaries.Nutrition.MealTiming, cfg)
	candidates := generateInsightCandidates(stats, summaries, signals)

	return WeekContext{
		UserID:         userID,
		Timezone:       timezone,
		PeriodStart:    periodStart.UTC().Format(dayKeyLayout),
		PeriodEnd:      periodEnd.UTC().Format(dayKeyLayout),
		DailyStats:     stats,
		Summaries:      summaries,
		Signals:        signals,
		Candidates:     candidates,
		DroppedRecords: dropped,
	}
}
