package report

import (
	"fmt"
	"strings"
)

// Candidate thresholds. Like the signal tunables these encode product
// judgment, not derived statistics.
const (
	proteinGoodDailyG    = 90
	proteinLowDailyG     = 50
	sugarHighDailyG      = 60
	fiberLowDailyG       = 18
	sodiumHighDailyMG    = 2800
	hydrationGoodDailyML = 2000
	hydrationLowDailyML  = 1200
	activeDaysGood       = 4
	frequentFoodCount    = 4
	lateSnackDaysMin     = 2
	lateStartDaysMin     = 3
)

type candidateList struct {
	items []InsightCandidate
	seen  map[string]bool
}

// add appends a candidate unless one with the same (section, title) was
// already emitted; the first occurrence wins.
func (l *candidateList) add(section SectionKey, bucket Bucket, title, evidence, action string) {
	key := string(section) + ":" + title
	if l.seen[key] {
		return
	}
	l.seen[key] = true
	l.items = append(l.items, InsightCandidate{
		Section:  section,
		Bucket:   bucket,
		Title:    title,
		Evidence: evidence,
		Action:   action,
	})
}

// generateInsightCandidates maps signal and summary conditions to candidate
// insights. Each rule is independent; output order is rule-evaluation order.
func generateInsightCandidates(stats []DailyStat, sums DomainSummaries, signals SignalBundle) []InsightCandidate {
	list := &candidateList{seen: map[string]bool{}}

	// Nutrition
	nutrition := sums.Nutrition
	if nutrition.DaysWithData > 0 {
		avg := nutrition.DailyAverages
		if avg.ProteinG >= proteinGoodDailyG {
			list.add(SectionNutrition, BucketWorking, "Consistent protein intake",
				fmt.Sprintf("Averaging %.0f g protein per day", avg.ProteinG),
				"Keep protein at every main meal")
		} else if avg.ProteinG > 0 && avg.ProteinG < proteinLowDailyG {
			list.add(SectionNutrition, BucketSuggested, "Increase protein",
				fmt.Sprintf("Averaging only %.0f g protein per day", avg.ProteinG),
				"Add a protein source to breakfast or lunch")
		}
		if avg.SugarG > sugarHighDailyG {
			list.add(SectionNutrition, BucketAvoid, "High sugar load",
				fmt.Sprintf("Averaging %.0f g sugar per day", avg.SugarG),
				"Swap one sweet snack per day for fruit or nuts")
		}
		if avg.FiberG > 0 && avg.FiberG < fiberLowDailyG {
			list.add(SectionNutrition, BucketSuggested, "Add fiber",
				fmt.Sprintf("Averaging %.0f g fiber per day", avg.FiberG),
				"Include vegetables or whole grains in two meals daily")
		}
		if avg.SodiumMG > sodiumHighDailyMG {
			list.add(SectionNutrition, BucketAvoid, "High sodium",
				fmt.Sprintf("Averaging %.0f mg sodium per day", avg.SodiumMG),
				"Cut back on processed and restaurant meals")
		}
	}
	for _, food := range nutrition.TopFoods {
		if food.Count >= frequentFoodCount {
			list.add(SectionNutrition, BucketSuggested, "Frequent repeat: "+food.Name,
				fmt.Sprintf("%q was logged %d times this week", food.Name, food.Count),
				"Rotate in an alternative to diversify nutrients")
			break
		}
	}
	for _, trend := range signals.Trends {
		if trend.Metric == MetricCalories {
			list.add(SectionNutrition, BucketSuggested, "Calorie intake shifting",
				fmt.Sprintf("Daily calories moved from %.0f to %.0f across the week", trend.FirstAvg, trend.SecondAvg),
				"Check whether the shift matches your goal")
		}
	}

	// Hydration
	hydration := sums.Hydration
	if hydration.DaysWithData > 0 {
		if hydration.DailyAvgML >= hydrationGoodDailyML {
			list.add(SectionHydration, BucketWorking, "Hydration on target",
				fmt.Sprintf("Averaging %.0f ml per day", hydration.DailyAvgML),
				"Keep your current water routine")
		} else if hydration.DailyAvgML < hydrationLowDailyML {
			list.add(SectionHydration, BucketSuggested, "Drink more water",
				fmt.Sprintf("Averaging only %.0f ml per day", hydration.DailyAvgML),
				"Set a refill reminder mid-morning and mid-afternoon")
		}
	}
	for _, corr := range signals.Correlations {
		if corr.Metric == MetricWaterML && corr.Outcome == MetricMoodAvg && corr.Diff > 0 {
			list.add(SectionHydration, BucketWorking, "Hydration lifts mood",
				fmt.Sprintf("Mood averaged %.1f on high-water days vs %.1f on low-water days", corr.HighAvg, corr.LowAvg),
				"Front-load water on busy days")
		}
	}

	// Exercise
	activity := sums.Activity
	if activity.ActiveDays >= activeDaysGood {
		list.add(SectionExercise, BucketWorking, "Regular activity",
			fmt.Sprintf("Active on %d days this week", activity.ActiveDays),
			"Hold this frequency next week")
	} else if len(stats) > 0 && activity.ActiveDays <= 1 {
		list.add(SectionExercise, BucketSuggested, "Move more often",
			fmt.Sprintf("Only %d active day(s) logged this week", activity.ActiveDays),
			"Schedule two short sessions on fixed days")
	}
	for _, corr := range signals.Correlations {
		if corr.Metric == MetricExerciseMinutes && corr.Outcome == MetricMoodAvg && corr.Diff > 0 {
			list.add(SectionExercise, BucketWorking, "Exercise lifts mood",
				fmt.Sprintf("Mood averaged %.1f on active days vs %.1f on low-activity days", corr.HighAvg, corr.LowAvg),
				"Use movement as a mood tool on hard days")
		}
	}
	for _, trend := range signals.Trends {
		if trend.Metric == MetricExerciseMinutes && trend.Direction == "down" {
			list.add(SectionExercise, BucketSuggested, "Activity declining",
				fmt.Sprintf("Daily minutes fell from %.0f to %.0f across the week", trend.FirstAvg, trend.SecondAvg),
				"Protect one workout slot in the second half of the week")
		}
	}

	// Mood
	if trend := sums.Mood.Trend; trend != nil {
		switch trend.Direction {
		case "up":
			list.add(SectionMood, BucketWorking, "Mood improving",
				fmt.Sprintf("Daily mood moved from %.1f to %.1f", trend.FirstAvg, trend.LastAvg),
				"Note what changed this week and repeat it")
		case "down":
			list.add(SectionMood, BucketSuggested, "Mood dipping",
				fmt.Sprintf("Daily mood moved from %.1f to %.1f", trend.FirstAvg, trend.LastAvg),
				"Plan one restorative activity in the next two days")
		}
	}
	for _, flag := range signals.RiskFlags {
		if flag.Name == "Large mood swings" {
			list.add(SectionMood, BucketSuggested, "Stabilize your routine",
				flag.Reason,
				"Anchor sleep and meal times to steady the swings")
		}
	}

	// Symptoms
	for _, flag := range signals.RiskFlags {
		if flag.Name == "Symptom-heavy days" {
			list.add(SectionSymptoms, BucketAvoid, "Symptom spikes",
				flag.Reason,
				"Review what preceded those days in your food and sleep logs")
		}
	}
	for _, corr := range signals.Correlations {
		if corr.Metric == MetricSugarG && corr.Outcome == MetricSymptomCount && corr.Diff > 0 {
			list.add(SectionSymptoms, BucketAvoid, "Sugar linked to symptoms",
				fmt.Sprintf("Symptoms averaged %.1f on high-sugar days vs %.1f otherwise", corr.HighAvg, corr.LowAvg),
				"Trial a lower-sugar day and compare")
		}
	}
	if len(stats) > 0 && sums.Symptoms.Entries == 0 {
		list.add(SectionSymptoms, BucketWorking, "Symptom-free week",
			"No symptoms were logged this period",
			"Keep doing what you're doing")
	}

	// Lifestyle (meal timing)
	timing := nutrition.MealTiming
	for _, flag := range signals.RiskFlags {
		if flag.Name == "Frequent late meals" {
			list.add(SectionLifestyle, BucketAvoid, "Late meals",
				flag.Reason,
				"Aim to finish dinner before 20:00 on most days")
		}
	}
	if len(timing.LateSnackDays) >= lateSnackDaysMin {
		list.add(SectionLifestyle, BucketAvoid, "Late-night snacking",
			fmt.Sprintf("Snacks after 20:00 on %s", joinDates(timing.LateSnackDays, 3)),
			"Close the kitchen after dinner; keep herbal tea on hand")
	}
	if len(timing.LateStartDays) >= lateStartDaysMin {
		list.add(SectionLifestyle, BucketSuggested, "Late first meals",
			fmt.Sprintf("First food after 10:00 on %s", joinDates(timing.LateStartDays, 3)),
			"Try an earlier light breakfast to steady energy")
	}
	if impact := signals.LateMealImpact; impact != nil &&
		impact.LateMoodAvg != nil && impact.OtherMoodAvg != nil &&
		*impact.LateMoodAvg < *impact.OtherMoodAvg {
		list.add(SectionLifestyle, BucketAvoid, "Late meals track with lower mood",
			fmt.Sprintf("Mood averaged %.1f on late-meal days vs %.1f otherwise", *impact.LateMoodAvg, *impact.OtherMoodAvg),
			"Compare how you feel after an early-dinner day")
	}

	// Labs
	labCount := 0
	for _, lab := range sums.Labs.Trends {
		if lab.Points < 2 || labCount >= 2 {
			continue
		}
		labCount++
		direction := "moved"
		if lab.Direction == "up" {
			direction = "rose"
		} else if lab.Direction == "down" {
			direction = "fell"
		}
		list.add(SectionLabs, BucketSuggested, "Watch "+lab.Name,
			fmt.Sprintf("%s %s from %g to %g %s", lab.Name, direction, lab.First, lab.Last, lab.Unit),
			"Bring this trend to your next clinician visit")
	}

	// Journal: cross-reference the day's stats for a concrete comparison.
	dayIndex := statByDay(stats)
	for _, highlight := range sums.Journal.Highlights {
		stat, ok := dayIndex[highlight.Day]
		if !ok {
			continue
		}
		list.add(SectionJournal, BucketWorking, "Journal note from "+highlight.Day,
			fmt.Sprintf("%q - that day: %s", highlight.Snippet, describeDay(stat)),
			"Compare how that day was logged with how it felt")
		break
	}

	// Goals
	for _, goal := range sums.Checkins.Goals {
		if goal.Trend == nil {
			continue
		}
		if *goal.Trend > 0 {
			list.add(SectionGoals, BucketWorking, "Goal improving: "+goal.Name,
				fmt.Sprintf("%s moved %+.1f across the week (avg %.1f)", goal.Name, *goal.Trend, goal.Average),
				"Keep the current approach for this goal")
		} else if *goal.Trend < 0 {
			list.add(SectionGoals, BucketSuggested, "Goal slipping: "+goal.Name,
				fmt.Sprintf("%s moved %+.1f across the week (avg %.1f)", goal.Name, *goal.Trend, goal.Average),
				"Pick one small daily action for this goal")
		}
	}

	// Overview
	if len(signals.RiskFlags) == 0 && len(stats) > 0 {
		list.add(SectionOverview, BucketWorking, "Steady week",
			"No risk patterns were detected across your logs",
			"Carry this routine into next week")
	}
	for _, flag := range signals.RiskFlags {
		list.add(SectionOverview, BucketAvoid, flag.Name, flag.Reason, "See the matching section for a concrete next step")
	}

	return list.items
}

func describeDay(stat DailyStat) string {
	parts := []string{
		fmt.Sprintf("%.0f kcal", stat.Calories),
		fmt.Sprintf("%.0f ml water", stat.WaterML),
		fmt.Sprintf("%.0f min exercise", stat.ExerciseMinutes),
	}
	if stat.MoodAvg != nil {
		parts = append(parts, fmt.Sprintf("mood %.1f", *stat.MoodAvg))
	}
	if stat.SymptomCount > 0 {
		parts = append(parts, fmt.Sprintf("%.0f symptom(s)", stat.SymptomCount))
	}
	if len(stat.TopFoods) > 0 {
		parts = append(parts, "ate "+stat.TopFoods[0].Name)
	}
	return strings.Join(parts, ", ")
}
