package report

import (
	"sort"
	"time"
)

const topFoodsPerDayLimit = 3

// aggregateDailyStats folds every domain's logs onto per-day records joined
// by the day key. Records without a resolvable day key are dropped here (the
// domain summarizers already counted them in ungrouped totals); the returned
// count lets the caller log the drops.
func aggregateDailyStats(logs WeekLogs, loc *time.Location) ([]DailyStat, int) {
	days := map[string]*DailyStat{}
	moodByDay := map[string][]float64{}
	foodsByDay := map[string]*counter{}
	dropped := 0

	touch := func(day string) *DailyStat {
		if stat, ok := days[day]; ok {
			return stat
		}
		stat := &DailyStat{Day: day}
		days[day] = stat
		return stat
	}

	for _, entry := range logs.Food {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		stat := touch(day)
		nutrients := nutrientsFrom(entry.Nutrients)
		stat.Calories += nutrients.Calories
		stat.ProteinG += nutrients.ProteinG
		stat.CarbsG += nutrients.CarbsG
		stat.FatG += nutrients.FatG
		stat.FiberG += nutrients.FiberG
		stat.SugarG += nutrients.SugarG
		stat.SodiumMG += nutrients.SodiumMG
		if _, ok := foodsByDay[day]; !ok {
			foodsByDay[day] = newCounter()
		}
		foodsByDay[day].add(entry.Name)
	}

	for _, entry := range logs.Water {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day).WaterML += entry.AmountML
	}

	for _, entry := range logs.Exercise {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day).ExerciseMinutes += entry.Minutes
	}

	for _, entry := range logs.Mood {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day)
		moodByDay[day] = append(moodByDay[day], entry.Rating)
	}

	for _, entry := range logs.Symptoms {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day).SymptomCount++
	}

	for _, entry := range logs.Checkins {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day).CheckinCount++
	}

	for _, entry := range logs.Journal {
		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day).JournalCount++
	}

	for _, entry := range logs.Chat {
		day := resolveDayKey(entry.SentAt, entry.LocalDate, loc)
		if day == "" {
			dropped++
			continue
		}
		touch(day).ChatCount++
	}

	keys := make([]string, 0, len(days))
	for day := range days {
		keys = append(keys, day)
	}
	// Lexicographic order is chronological for YYYY-MM-DD keys.
	sort.Strings(keys)

	stats := make([]DailyStat, 0, len(keys))
	for _, day := range keys {
		stat := days[day]
		stat.Calories = round0(stat.Calories)
		stat.ProteinG = round1(stat.ProteinG)
		stat.CarbsG = round1(stat.CarbsG)
		stat.FatG = round1(stat.FatG)
		stat.FiberG = round1(stat.FiberG)
		stat.SugarG = round1(stat.SugarG)
		stat.SodiumMG = round0(stat.SodiumMG)
		stat.WaterML = round0(stat.WaterML)
		stat.ExerciseMinutes = round0(stat.ExerciseMinutes)
		if ratings, ok := moodByDay[day]; ok && len(ratings) > 0 {
			avg := round1(mean(ratings))
			stat.MoodAvg = &avg
		}
		if foods, ok := foodsByDay[day]; ok {
			stat.TopFoods = foods.top(topFoodsPerDayLimit)
		}
		stats = append(stats, *stat)
	}
	return stats, dropped
}

// statByDay indexes a stat slice for the journal cross-reference rules.
func statByDay(stats []DailyStat) map[string]DailyStat {
	indexed := make(map[string]DailyStat, len(stats))
	for _, stat := range stats {
		indexed[stat.Day] = stat
	}
	return indexed
}
