package report

import (
	"strings"
	"time"
)

const (
	topFoodsLimit = 8

	lateMealHour  = 21
	lateSnackHour = 20
	lateStartHour = 10
)

// Ordered alias chains for the schema-loose nutrient payloads. First present
// numeric value wins.
var (
	caloriesAliases = []string{"calories", "kcal", "energy_kcal"}
	proteinAliases  = []string{"protein_g", "protein"}
	carbsAliases    = []string{"carbs_g", "carbs", "carbohydrates_g"}
	fatAliases      = []string{"fat_g", "fat"}
	fiberAliases    = []string{"fiber_g", "fiber"}
	sugarAliases    = []string{"sugar_g", "sugar"}
	sodiumAliases   = []string{"sodium_mg", "sodium"}
)

type NutrientTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMG float64 `json:"sodium_mg"`
}

func (t *NutrientTotals) add(other NutrientTotals) {
	t.Calories += other.Calories
	t.ProteinG += other.ProteinG
	t.CarbsG += other.CarbsG
	t.FatG += other.FatG
	t.FiberG += other.FiberG
	t.SugarG += other.SugarG
	t.SodiumMG += other.SodiumMG
}

func (t NutrientTotals) rounded() NutrientTotals {
	return NutrientTotals{
		Calories: round0(t.Calories),
		ProteinG: round1(t.ProteinG),
		CarbsG:   round1(t.CarbsG),
		FatG:     round1(t.FatG),
		FiberG:   round1(t.FiberG),
		SugarG:   round1(t.SugarG),
		SodiumMG: round0(t.SodiumMG),
	}
}

func nutrientsFrom(payload map[string]any) NutrientTotals {
	return NutrientTotals{
		Calories: numberFromMap(payload, caloriesAliases...),
		ProteinG: numberFromMap(payload, proteinAliases...),
		CarbsG:   numberFromMap(payload, carbsAliases...),
		FatG:     numberFromMap(payload, fatAliases...),
		FiberG:   numberFromMap(payload, fiberAliases...),
		SugarG:   numberFromMap(payload, sugarAliases...),
		SodiumMG: numberFromMap(payload, sodiumAliases...),
	}
}

// MealTiming tracks day-level eating-hour patterns. A day is a late-meal day
// when its last food entry lands at 21:00 local or later, a late-snack day
// when any snack entry lands at 20:00 or later, and a late-start day when the
// first entry lands at 10:00 or later.
type MealTiming struct {
	LateMealDays  []string `json:"lateMealDays"`
	LateSnackDays []string `json:"lateSnackDays"`
	LateStartDays []string `json:"lateStartDays"`
}

type NutritionSummary struct {
	Entries           int            `json:"entries"`
	UnbucketedEntries int            `json:"unbucketedEntries,omitempty"`
	DaysWithData      int            `json:"daysWithData"`
	Totals            NutrientTotals `json:"totals"`
	DailyAverages     NutrientTotals `json:"dailyAverages"`
	TopFoods          []TopItem      `json:"topFoods"`
	MealTiming        MealTiming     `json:"mealTiming"`
}

func summarizeNutrition(logs []FoodLog, loc *time.Location) NutritionSummary {
	summary := NutritionSummary{Entries: len(logs)}
	foods := newCounter()

	dayTotals := map[string]*NutrientTotals{}
	firstHour := map[string]int{}
	lastHour := map[string]int{}
	lateSnack := map[string]bool{}

	for _, entry := range logs {
		nutrients := nutrientsFrom(entry.Nutrients)
		summary.Totals.add(nutrients)
		foods.add(entry.Name)

		day := resolveDayKey(entry.LoggedAt, entry.LocalDate, loc)
		if day == "" {
			summary.UnbucketedEntries++
			continue
		}
		if _, ok := dayTotals[day]; !ok {
			dayTotals[day] = &NutrientTotals{}
		}
		dayTotals[day].add(nutrients)

		if entry.LoggedAt.IsZero() {
			continue
		}
		hour := localHour(entry.LoggedAt, loc)
		if current, ok := firstHour[day]; !ok || hour < current {
			firstHour[day] = hour
		}
		if current, ok := lastHour[day]; !ok || hour > current {
			lastHour[day] = hour
		}
		if strings.EqualFold(strings.TrimSpace(entry.MealType), "snack") && hour >= lateSnackHour {
			lateSnack[day] = true
		}
	}

	summary.DaysWithData = len(dayTotals)
	if summary.DaysWithData > 0 {
		bucketed := NutrientTotals{}
		for _, totals := range dayTotals {
			bucketed.add(*totals)
		}
		days := float64(summary.DaysWithData)
		summary.DailyAverages = NutrientTotals{
			Calories: bucketed.Calories / days,
			ProteinG: bucketed.ProteinG / days,
			CarbsG:   bucketed.CarbsG / days,
			FatG:     bucketed.FatG / days,
			FiberG:   bucketed.FiberG / days,
			SugarG:   bucketed.SugarG / days,
			SodiumMG: bucketed.SodiumMG / days,
		}.rounded()
	}
	summary.Totals = summary.Totals.rounded()
	summary.TopFoods = foods.top(topFoodsLimit)

	lateMeal := map[string]bool{}
	lateStart := map[string]bool{}
	for day, hour := range lastHour {
		if hour >= lateMealHour {
			lateMeal[day] = true
		}
	}
	for day, hour := range firstHour {
		if hour >= lateStartHour {
			lateStart[day] = true
		}
	}
	summary.MealTiming = MealTiming{
		LateMealDays:  sortedKeys(lateMeal),
		LateSnackDays: sortedKeys(lateSnack),
		LateStartDays: sortedKeys(lateStart),
	}
	return summary
}
