package report

import (
	"sort"
	"strconv"
	"strings"
)

const hiddenGoalPrefix = "__"

type GoalSummary struct {
	Name    string   `json:"name"`
	Entries int      `json:"entries"`
	Average float64  `json:"average"`
	Trend   *float64 `json:"trend"`
}

type CheckinSummary struct {
	Entries int           `json:"entries"`
	Goals   []GoalSummary `json:"goals"`
}

func parseGoalValue(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	switch strings.ToLower(trimmed) {
	case "na", "n/a", "none", "-":
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// summarizeCheckins folds named goal check-ins. Goals prefixed with "__" are
// internal bookkeeping and never surface in reports. Trend is last minus
// first valid value in timestamp order.
func summarizeCheckins(logs []CheckinLog) CheckinSummary {
	summary := CheckinSummary{Entries: len(logs)}

	type goalSeries struct {
		label   string
		entries []CheckinLog
	}
	series := map[string]*goalSeries{}
	order := []string{}

	for _, entry := range logs {
		name := strings.TrimSpace(entry.Goal)
		if name == "" || strings.HasPrefix(name, hiddenGoalPrefix) {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := series[key]; !ok {
			series[key] = &goalSeries{label: name}
			order = append(order, key)
		}
		series[key].entries = append(series[key].entries, entry)
	}

	for _, key := range order {
		goal := series[key]
		sort.SliceStable(goal.entries, func(i, j int) bool {
			return goal.entries[i].LoggedAt.Before(goal.entries[j].LoggedAt)
		})

		values := make([]float64, 0, len(goal.entries))
		for _, entry := range goal.entries {
			if v, ok := parseGoalValue(entry.Value); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		item := GoalSummary{
			Name:    goal.label,
			Entries: len(values),
			Average: round1(mean(values)),
		}
		trend := round1(values[len(values)-1] - values[0])
		item.Trend = &trend
		summary.Goals = append(summary.Goals, item)
	}
	return summary
}
