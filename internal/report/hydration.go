package report

import "time"

const topDrinksLimit = 5

type HydrationSummary struct {
	Entries           int       `json:"entries"`
	UnbucketedEntries int       `json:"unbucketedEntries,omitempty"`
	DaysWithData      int       `json:"daysWithData"`
	TotalML           float64   `json:"totalMl"`
	DailyAvgML        float64   `json:"dailyAvgMl"`
	TopDrinks         []TopItem `json:"topDrinks"`
}

func summarizeHydration(logs []WaterLog, loc *time.Location) HydrationSummary {
	summary := HydrationSummary{Entries: len(logs)}
	drinks := newCounter()
	dayTotals := map[string]float64{}

	for _, entry := range logs {
		summary.TotalML += entry.AmountML
		drinks.add(entry.Label)

		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			summary.UnbucketedEntries++
			continue
		}
		dayTotals[day] += entry.AmountML
	}

	summary.DaysWithData = len(dayTotals)
	if summary.DaysWithData > 0 {
		bucketed := 0.0
		for _, total := range dayTotals {
			bucketed += total
		}
		summary.DailyAvgML = round0(bucketed / float64(summary.DaysWithData))
	}
	summary.TotalML = round0(summary.TotalML)
	summary.TopDrinks = drinks.top(topDrinksLimit)
	return summary
}
