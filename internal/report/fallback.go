package report

import (
	"fmt"
	"strings"
)

const highlightListLimit = 3

// FallbackReport is the fully deterministic report built from the signal
// bundle alone. It is always computed: it is the sole output when synthesis
// is disqualified or fails, and the gap-filler when the model answers thinly.
type FallbackReport struct {
	Summary  string
	Wins     []string
	Gaps     []string
	Sections Sections
}

func buildFallbackReport(week WeekContext) FallbackReport {
	fallback := FallbackReport{}

	for _, candidate := range week.Candidates {
		buckets := fallback.Sections.Buckets(candidate.Section)
		if buckets == nil {
			continue
		}
		slot := buckets.bucket(candidate.Bucket)
		if slot == nil {
			continue
		}
		*slot = append(*slot, InsightItem{
			Name:   candidate.Title,
			Reason: joinEvidenceAction(candidate.Evidence, candidate.Action),
		})
		switch candidate.Bucket {
		case BucketWorking:
			if len(fallback.Wins) < highlightListLimit {
				fallback.Wins = append(fallback.Wins, candidate.Title)
			}
		case BucketSuggested, BucketAvoid:
			if len(fallback.Gaps) < highlightListLimit {
				fallback.Gaps = append(fallback.Gaps, candidate.Title)
			}
		}
	}

	fallback.Summary = buildFallbackSummary(week)
	return fallback
}

func joinEvidenceAction(evidence, action string) string {
	evidence = strings.TrimSpace(evidence)
	action = strings.TrimSpace(action)
	switch {
	case evidence == "":
		return action
	case action == "":
		return evidence
	default:
		return evidence + ". " + action
	}
}

func buildFallbackSummary(week WeekContext) string {
	lines := []string{}

	dayCount := len(week.DailyStats)
	if dayCount == 0 {
		return "No logs were recorded this week, so there is nothing to summarize yet. " +
			"Start logging meals, water, and mood to unlock weekly insights."
	}
	lines = append(lines, fmt.Sprintf("You logged data on %d day(s) between %s and %s.", dayCount, week.PeriodStart, week.PeriodEnd))

	if week.Summaries.Nutrition.DaysWithData > 0 {
		lines = append(lines, fmt.Sprintf(
			"Food intake averaged %.0f kcal per day across %d day(s).",
			week.Summaries.Nutrition.DailyAverages.Calories,
			week.Summaries.Nutrition.DaysWithData,
		))
	}
	if week.Summaries.Hydration.DaysWithData > 0 {
		lines = append(lines, fmt.Sprintf("Water intake averaged %.0f ml per day.", week.Summaries.Hydration.DailyAvgML))
	}
	if week.Summaries.Activity.ActiveDays > 0 {
		lines = append(lines, fmt.Sprintf(
			"You were active on %d day(s) for %.0f total minutes.",
			week.Summaries.Activity.ActiveDays,
			week.Summaries.Activity.TotalMinutes,
		))
	}
	if avg := week.Summaries.Mood.Average; avg != nil {
		lines = append(lines, fmt.Sprintf("Mood averaged %.1f.", *avg))
	}
	if flagged := len(week.Signals.RiskFlags); flagged > 0 {
		lines = append(lines, fmt.Sprintf("%d pattern(s) are worth attention; see the highlighted sections.", flagged))
	} else {
		lines = append(lines, "No concerning patterns were detected this week.")
	}
	return strings.Join(lines, " ")
}
