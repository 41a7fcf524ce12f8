package report

import (
	"sort"
	"time"
)

const (
	topSymptomsLimit = 6

	moodTrendWindow    = 3
	moodTrendThreshold = 0.3
)

type DayValue struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

type MoodTrend struct {
	FirstAvg  float64 `json:"firstAvg"`
	LastAvg   float64 `json:"lastAvg"`
	Change    float64 `json:"change"`
	Direction string  `json:"direction"`
}

type MoodSummary struct {
	Entries int        `json:"entries"`
	Average *float64   `json:"average"`
	Daily   []DayValue `json:"daily"`
	Trend   *MoodTrend `json:"trend"`
}

func summarizeMood(logs []MoodLog, loc *time.Location) MoodSummary {
	summary := MoodSummary{Entries: len(logs)}
	byDay := map[string][]float64{}
	all := make([]float64, 0, len(logs))

	for _, entry := range logs {
		all = append(all, entry.Rating)
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			continue
		}
		byDay[day] = append(byDay[day], entry.Rating)
	}

	if len(all) > 0 {
		avg := round1(mean(all))
		summary.Average = &avg
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		summary.Daily = append(summary.Daily, DayValue{Day: day, Value: round1(mean(byDay[day]))})
	}

	// Trend compares the first and last few daily averages; one day of data
	// cannot trend.
	if len(summary.Daily) >= 2 {
		window := moodTrendWindow
		if len(summary.Daily) < window {
			window = len(summary.Daily)
		}
		first := make([]float64, 0, window)
		last := make([]float64, 0, window)
		for _, dv := range summary.Daily[:window] {
			first = append(first, dv.Value)
		}
		for _, dv := range summary.Daily[len(summary.Daily)-window:] {
			last = append(last, dv.Value)
		}
		firstAvg := round1(mean(first))
		lastAvg := round1(mean(last))
		change := round1(lastAvg - firstAvg)
		direction := "flat"
		if change > moodTrendThreshold {
			direction = "up"
		} else if change < -moodTrendThreshold {
			direction = "down"
		}
		summary.Trend = &MoodTrend{
			FirstAvg:  firstAvg,
			LastAvg:   lastAvg,
			Change:    change,
			Direction: direction,
		}
	}
	return summary
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type SymptomSummary struct {
	Entries     int        `json:"entries"`
	TopSymptoms []TopItem  `json:"topSymptoms"`
	ByDay       []DayCount `json:"byDay"`
}

func summarizeSymptoms(logs []SymptomLog, loc *time.Location) SymptomSummary {
	summary := SymptomSummary{Entries: len(logs)}
	symptoms := newCounter()
	byDay := map[string]int{}

	for _, entry := range logs {
		symptoms.add(entry.Name)
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			continue
		}
		byDay[day]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		summary.ByDay = append(summary.ByDay, DayCount{Day: day, Count: byDay[day]})
	}
	summary.TopSymptoms = symptoms.top(topSymptomsLimit)
	return summary
}
