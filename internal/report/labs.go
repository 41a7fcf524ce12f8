package report

import (
	"fmt"
	"sort"
	"strings"
)

type LabTrend struct {
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
	Points    int     `json:"points"`
}

type LabSummary struct {
	Entries    int        `json:"entries"`
	Trends     []LabTrend `json:"trends"`
	Highlights []string   `json:"highlights"`
}

// summarizeLabs groups results by analyte name and reports first-to-last
// movement per analyte across the period.
func summarizeLabs(results []LabResult) LabSummary {
	summary := LabSummary{Entries: len(results)}

	type labSeries struct {
		label   string
		unit    string
		results []LabResult
	}
	series := map[string]*labSeries{}
	order := []string{}

	for _, result := range results {
		name := strings.TrimSpace(result.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := series[key]; !ok {
			series[key] = &labSeries{label: name, unit: strings.TrimSpace(result.Unit)}
			order = append(order, key)
		}
		series[key].results = append(series[key].results, result)
	}

	for _, key := range order {
		lab := series[key]
		sort.SliceStable(lab.results, func(i, j int) bool {
			return lab.results[i].CollectedAt.Before(lab.results[j].CollectedAt)
		})
		first := lab.results[0].Value
		last := lab.results[len(lab.results)-1].Value
		delta := round2(last - first)
		direction := "flat"
		if delta > 0 {
			direction = "up"
		} else if delta < 0 {
			direction = "down"
		}
		summary.Trends = append(summary.Trends, LabTrend{
			Name:      lab.label,
			Unit:      lab.unit,
			First:     first,
			Last:      last,
			Delta:     delta,
			Direction: direction,
			Points:    len(lab.results),
		})
		if len(lab.results) >= 2 {
			summary.Highlights = append(summary.Highlights, formatLabHighlight(lab.label, lab.unit, first, last))
		}
	}
	return summary
}

func formatLabHighlight(name, unit string, first, last float64) string {
	if unit == "" {
		return fmt.Sprintf("%s: %g to %g", name, first, last)
	}
	return fmt.Sprintf("%s: %g to %g %s", name, first, last, unit)
}
