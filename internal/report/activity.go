package report

import "time"

const topActivitiesLimit = 5

type ActivitySummary struct {
	Entries           int       `json:"entries"`
	UnbucketedEntries int       `json:"unbucketedEntries,omitempty"`
	ActiveDays        int       `json:"activeDays"`
	TotalMinutes      float64   `json:"totalMinutes"`
	DailyAvgMinutes   float64   `json:"dailyAvgMinutes"`
	TopActivities     []TopItem `json:"topActivities"`
}

func summarizeActivity(logs []ExerciseLog, loc *time.Location) ActivitySummary {
	summary := ActivitySummary{Entries: len(logs)}
	activities := newCounter()
	dayTotals := map[string]float64{}

	for _, entry := range logs {
		summary.TotalMinutes += entry.Minutes
		activities.add(entry.Activity)

		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			summary.UnbucketedEntries++
			continue
		}
		dayTotals[day] += entry.Minutes
	}

	summary.ActiveDays = len(dayTotals)
	if summary.ActiveDays > 0 {
		bucketed := 0.0
		for _, total := range dayTotals {
			bucketed += total
		}
		summary.DailyAvgMinutes = round1(bucketed / float64(summary.ActiveDays))
	}
	summary.TotalMinutes = round0(summary.TotalMinutes)
	summary.TopActivities = activities.top(topActivitiesLimit)
	return summary
}
