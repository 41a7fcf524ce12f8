package report

import (
	"fmt"
	"strings"
)

// CorrelationRule names a metric/outcome pair and the minimum high-vs-low
// average gap worth reporting.
type CorrelationRule struct {
	Metric  string
	Outcome string
	MinDiff float64
}

type TrendRule struct {
	Metric         string
	MinDiff        float64
	Unit           string
	ImprovesWhenUp *bool
}

// SignalConfig carries the signal-engine tunables. The defaults mirror the
// established product behavior; none of the multipliers has a statistical
// derivation, so they stay configuration rather than computed values.
type SignalConfig struct {
	SpikeMultiplier   float64
	LowMultiplier     float64
	MoodLowMultiplier float64

	CorrelationMinDays int
	MinGroupDays       int
	Correlations       []CorrelationRule
	Trends             []TrendRule

	TrendMinDays    int
	FlagDateLimit   int
	LowHydrationMin int
	LowActivityMin  int
	LowMoodMin      int
	LateMealMin     int
	SymptomHeavyMin int
	MoodRangeMin    float64
	MoodRangeDays   int
}

func boolPtr(v bool) *bool { return &v }

func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		SpikeMultiplier:    1.5,
		LowMultiplier:      0.5,
		MoodLowMultiplier:  0.8,
		CorrelationMinDays: 4,
		MinGroupDays:       2,
		Correlations: []CorrelationRule{
			{Metric: MetricWaterML, Outcome: MetricMoodAvg, MinDiff: 0.3},
			{Metric: MetricSugarG, Outcome: MetricSymptomCount, MinDiff: 0.6},
			{Metric: MetricExerciseMinutes, Outcome: MetricMoodAvg, MinDiff: 0.3},
			{Metric: MetricFiberG, Outcome: MetricSymptomCount, MinDiff: 0.6},
			{Metric: MetricCalories, Outcome: MetricMoodAvg, MinDiff: 0.4},
		},
		Trends: []TrendRule{
			{Metric: MetricWaterML, MinDiff: 350, Unit: "ml", ImprovesWhenUp: boolPtr(true)},
			{Metric: MetricExerciseMinutes, MinDiff: 8, Unit: "min", ImprovesWhenUp: boolPtr(true)},
			{Metric: MetricMoodAvg, MinDiff: 0.4, Unit: "", ImprovesWhenUp: boolPtr(true)},
			{Metric: MetricSymptomCount, MinDiff: 1, Unit: "", ImprovesWhenUp: boolPtr(false)},
			{Metric: MetricCalories, MinDiff: 200, Unit: "kcal", ImprovesWhenUp: nil},
			{Metric: MetricProteinG, MinDiff: 12, Unit: "g", ImprovesWhenUp: boolPtr(true)},
		},
		TrendMinDays:    4,
		FlagDateLimit:   3,
		LowHydrationMin: 3,
		LowActivityMin:  3,
		LowMoodMin:      3,
		LateMealMin:     3,
		SymptomHeavyMin: 2,
		MoodRangeMin:    1.5,
		MoodRangeDays:   3,
	}
}

// metricValue reads a named metric off a DailyStat. The second return is
// false when the metric has no value that day (mood on mood-less days).
func metricValue(stat DailyStat, metric string) (float64, bool) {
	switch metric {
	case MetricCalories:
		return stat.Calories, true
	case MetricProteinG:
		return stat.ProteinG, true
	case MetricCarbsG:
		return stat.CarbsG, true
	case MetricFiberG:
		return stat.FiberG, true
	case MetricSugarG:
		return stat.SugarG, true
	case MetricSodiumMG:
		return stat.SodiumMG, true
	case MetricWaterML:
		return stat.WaterML, true
	case MetricExerciseMinutes:
		return stat.ExerciseMinutes, true
	case MetricSymptomCount:
		return stat.SymptomCount, true
	case MetricMoodAvg:
		if stat.MoodAvg == nil {
			return 0, false
		}
		return *stat.MoodAvg, true
	}
	return 0, false
}

// positiveMean averages a metric across days where it is strictly positive.
func positiveMean(stats []DailyStat, metric string) (float64, int) {
	values := []float64{}
	for _, stat := range stats {
		if v, ok := metricValue(stat, metric); ok && v > 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	return mean(values), len(values)
}

// spikeDays returns up to limit days where the metric is at least
// multiplier times its positive-day mean, in day-key order.
func spikeDays(stats []DailyStat, metric string, multiplier float64, limit int) []string {
	avg, n := positiveMean(stats, metric)
	if n == 0 {
		return nil
	}
	days := []string{}
	for _, stat := range stats {
		if v, ok := metricValue(stat, metric); ok && v > 0 && v >= avg*multiplier {
			days = append(days, stat.Day)
		}
	}
	return firstN(days, limit)
}

// lowDays returns up to limit days where the metric is at most multiplier
// times its positive-day mean, in day-key order.
func lowDays(stats []DailyStat, metric string, multiplier float64, limit int) []string {
	avg, n := positiveMean(stats, metric)
	if n == 0 {
		return nil
	}
	days := []string{}
	for _, stat := range stats {
		if v, ok := metricValue(stat, metric); ok && v > 0 && v <= avg*multiplier {
			days = append(days, stat.Day)
		}
	}
	return firstN(days, limit)
}

// buildCorrelation splits qualifying days at the metric's own mean and
// compares the outcome averages of the high and low groups. Nil when too few
// days qualify, a group is too small, or the gap is under rule.MinDiff.
func buildCorrelation(stats []DailyStat, rule CorrelationRule, cfg SignalConfig) *CorrelationSignal {
	type point struct {
		day     string
		metric  float64
		outcome float64
	}
	points := []point{}
	for _, stat := range stats {
		m, okM := metricValue(stat, rule.Metric)
		o, okO := metricValue(stat, rule.Outcome)
		if !okM || !okO || m <= 0 {
			continue
		}
		points = append(points, point{day: stat.Day, metric: m, outcome: o})
	}
	if len(points) < cfg.CorrelationMinDays {
		return nil
	}

	metricValues := make([]float64, 0, len(points))
	for _, p := range points {
		metricValues = append(metricValues, p.metric)
	}
	metricAvg := mean(metricValues)

	highDays, lowDaysList := []string{}, []string{}
	highOutcomes, lowOutcomes := []float64{}, []float64{}
	for _, p := range points {
		if p.metric >= metricAvg {
			highDays = append(highDays, p.day)
			highOutcomes = append(highOutcomes, p.outcome)
		} else {
			lowDaysList = append(lowDaysList, p.day)
			lowOutcomes = append(lowOutcomes, p.outcome)
		}
	}
	if len(highOutcomes) < cfg.MinGroupDays || len(lowOutcomes) < cfg.MinGroupDays {
		return nil
	}

	highAvg := round2(mean(highOutcomes))
	lowAvg := round2(mean(lowOutcomes))
	diff := round2(highAvg - lowAvg)
	if diff < rule.MinDiff && -diff < rule.MinDiff {
		return nil
	}
	return &CorrelationSignal{
		Metric:    rule.Metric,
		Outcome:   rule.Outcome,
		MetricAvg: round2(metricAvg),
		HighAvg:   highAvg,
		LowAvg:    lowAvg,
		Diff:      diff,
		HighDays:  highDays,
		LowDays:   lowDaysList,
	}
}

// buildTrend compares the first and second half of the chronological day list
// for one metric. Nil under cfg.TrendMinDays days or under the rule's minimum
// movement.
func buildTrend(stats []DailyStat, rule TrendRule, cfg SignalConfig) *TrendSignal {
	values := []float64{}
	for _, stat := range stats {
		if v, ok := metricValue(stat, rule.Metric); ok {
			values = append(values, v)
		}
	}
	if len(values) < cfg.TrendMinDays {
		return nil
	}

	mid := len(values) / 2
	firstAvg := round2(mean(values[:mid]))
	secondAvg := round2(mean(values[mid:]))
	diff := round2(secondAvg - firstAvg)
	if diff < rule.MinDiff && -diff < rule.MinDiff {
		return nil
	}
	direction := "flat"
	if diff > 0 {
		direction = "up"
	} else if diff < 0 {
		direction = "down"
	}
	return &TrendSignal{
		Metric:         rule.Metric,
		FirstAvg:       firstAvg,
		SecondAvg:      secondAvg,
		Diff:           diff,
		Direction:      direction,
		Unit:           rule.Unit,
		ImprovesWhenUp: rule.ImprovesWhenUp,
	}
}

// buildLateMealImpact compares mood and symptoms between late-meal days and
// the rest of the week. Nil unless both groups have at least minGroup days.
func buildLateMealImpact(stats []DailyStat, lateMealDays []string, minGroup int) *LateMealImpact {
	late := map[string]bool{}
	for _, day := range lateMealDays {
		late[day] = true
	}

	lateMoods, otherMoods := []float64{}, []float64{}
	lateSymptoms, otherSymptoms := []float64{}, []float64{}
	lateCount, otherCount := 0, 0
	for _, stat := range stats {
		if late[stat.Day] {
			lateCount++
			if stat.MoodAvg != nil {
				lateMoods = append(lateMoods, *stat.MoodAvg)
			}
			lateSymptoms = append(lateSymptoms, stat.SymptomCount)
		} else {
			otherCount++
			if stat.MoodAvg != nil {
				otherMoods = append(otherMoods, *stat.MoodAvg)
			}
			otherSymptoms = append(otherSymptoms, stat.SymptomCount)
		}
	}
	if lateCount < minGroup || otherCount < minGroup {
		return nil
	}

	impact := &LateMealImpact{LateDays: append([]string{}, lateMealDays...)}
	if len(lateMoods) > 0 {
		v := round2(mean(lateMoods))
		impact.LateMoodAvg = &v
	}
	if len(otherMoods) > 0 {
		v := round2(mean(otherMoods))
		impact.OtherMoodAvg = &v
	}
	if len(lateSymptoms) > 0 {
		v := round2(mean(lateSymptoms))
		impact.LateSymptomAvg = &v
	}
	if len(otherSymptoms) > 0 {
		v := round2(mean(otherSymptoms))
		impact.OtherSymptomAvg = &v
	}
	return impact
}

func buildRiskFlags(stats []DailyStat, timing MealTiming, cfg SignalConfig) []RiskFlag {
	flags := []RiskFlag{}

	lowHydration := lowDays(stats, MetricWaterML, cfg.LowMultiplier, cfg.FlagDateLimit)
	if len(lowHydration) >= cfg.LowHydrationMin {
		flags = append(flags, RiskFlag{
			Name:   "Repeated low hydration days",
			Reason: "Water intake was well below your weekly average on " + joinDates(lowHydration, cfg.FlagDateLimit),
		})
	}

	lowActivity := lowDays(stats, MetricExerciseMinutes, cfg.LowMultiplier, cfg.FlagDateLimit)
	if len(lowActivity) >= cfg.LowActivityMin {
		flags = append(flags, RiskFlag{
			Name:   "Repeated low activity days",
			Reason: "Exercise minutes were well below your weekly average on " + joinDates(lowActivity, cfg.FlagDateLimit),
		})
	}

	// Mood sits on a 1-10 scale, so the cutoff is gentler than the 0.5
	// used for volume metrics.
	lowMood := lowDays(stats, MetricMoodAvg, cfg.MoodLowMultiplier, cfg.FlagDateLimit)
	if len(lowMood) >= cfg.LowMoodMin {
		flags = append(flags, RiskFlag{
			Name:   "Repeated low mood days",
			Reason: "Mood was well below your weekly average on " + joinDates(lowMood, cfg.FlagDateLimit),
		})
	}

	if len(timing.LateMealDays) >= cfg.LateMealMin {
		flags = append(flags, RiskFlag{
			Name:   "Frequent late meals",
			Reason: "Last meal of the day landed at or after 21:00 on " + joinDates(timing.LateMealDays, cfg.FlagDateLimit),
		})
	}

	symptomHeavy := spikeDays(stats, MetricSymptomCount, cfg.SpikeMultiplier, cfg.FlagDateLimit)
	if len(symptomHeavy) >= cfg.SymptomHeavyMin {
		flags = append(flags, RiskFlag{
			Name:   "Symptom-heavy days",
			Reason: "Symptom counts spiked on " + joinDates(symptomHeavy, cfg.FlagDateLimit),
		})
	}

	moodValues := []float64{}
	for _, stat := range stats {
		if stat.MoodAvg != nil {
			moodValues = append(moodValues, *stat.MoodAvg)
		}
	}
	if len(moodValues) >= cfg.MoodRangeDays {
		minMood, maxMood := moodValues[0], moodValues[0]
		for _, v := range moodValues[1:] {
			if v < minMood {
				minMood = v
			}
			if v > maxMood {
				maxMood = v
			}
		}
		if maxMood-minMood >= cfg.MoodRangeMin {
			flags = append(flags, RiskFlag{
				Name:   "Large mood swings",
				Reason: fmt.Sprintf("Daily mood ranged from %.1f to %.1f this week", minMood, maxMood),
			})
		}
	}
	return flags
}

func joinDates(days []string, limit int) string {
	return strings.Join(firstN(days, limit), ", ")
}

// buildSignals runs the full signal engine over the daily stat sequence.
func buildSignals(stats []DailyStat, timing MealTiming, cfg SignalConfig) SignalBundle {
	bundle := SignalBundle{
		Correlations: []CorrelationSignal{},
		Trends:       []TrendSignal{},
		RiskFlags:    []RiskFlag{},
	}
	for _, rule := range cfg.Correlations {
		if signal := buildCorrelation(stats, rule, cfg); signal != nil {
			bundle.Correlations = append(bundle.Correlations, *signal)
		}
	}
	for _, rule := range cfg.Trends {
		if signal := buildTrend(stats, rule, cfg); signal != nil {
			bundle.Trends = append(bundle.Trends, *signal)
		}
	}
	bundle.RiskFlags = buildRiskFlags(stats, timing, cfg)
	bundle.LateMealImpact = buildLateMealImpact(stats, timing.LateMealDays, cfg.MinGroupDays)
	return bundle
}
