package report

import (
	"strings"
	"testing"
)

func TestGenerateInsightCandidatesDedup(t *testing.T) {
	list := &candidateList{seen: map[string]bool{}}
	list.add(SectionNutrition, BucketWorking, "Consistent protein intake", "first", "act")
	list.add(SectionNutrition, BucketSuggested, "Consistent protein intake", "second", "act")
	list.add(SectionHydration, BucketWorking, "Consistent protein intake", "other section", "act")

	if len(list.items) != 2 {
		t.Fatalf("expected section:title dedup, got %d items", len(list.items))
	}
	if list.items[0].Evidence != "first" {
		t.Fatalf("expected first occurrence to win, got %q", list.items[0].Evidence)
	}
}

func TestGenerateInsightCandidatesNutritionRules(t *testing.T) {
	sums := DomainSummaries{
		Nutrition: NutritionSummary{
			DaysWithData: 5,
			DailyAverages: NutrientTotals{
				ProteinG: 95,
				SugarG:   80,
				FiberG:   10,
			},
			TopFoods: []TopItem{{Name: "Pizza", Count: 5}},
		},
	}
	stats := []DailyStat{{Day: "2026-03-01"}}

	candidates := generateInsightCandidates(stats, sums, SignalBundle{})
	titles := map[string]Bucket{}
	for _, c := range candidates {
		titles[c.Title] = c.Bucket
	}

	if titles["Consistent protein intake"] != BucketWorking {
		t.Fatalf("expected protein working candidate, got %+v", candidates)
	}
	if titles["High sugar load"] != BucketAvoid {
		t.Fatalf("expected sugar avoid candidate, got %+v", candidates)
	}
	if titles["Add fiber"] != BucketSuggested {
		t.Fatalf("expected fiber suggested candidate, got %+v", candidates)
	}
	if titles["Frequent repeat: Pizza"] != BucketSuggested {
		t.Fatalf("expected frequent food candidate, got %+v", candidates)
	}
}

func TestGenerateInsightCandidatesSymptomFreeWeek(t *testing.T) {
	stats := []DailyStat{{Day: "2026-03-01"}}
	candidates := generateInsightCandidates(stats, DomainSummaries{}, SignalBundle{})

	foundSymptomFree, foundSteady := false, false
	for _, c := range candidates {
		if c.Section == SectionSymptoms && c.Title == "Symptom-free week" {
			foundSymptomFree = true
		}
		if c.Section == SectionOverview && c.Title == "Steady week" {
			foundSteady = true
		}
	}
	if !foundSymptomFree || !foundSteady {
		t.Fatalf("expected symptom-free and steady-week candidates, got %+v", candidates)
	}
}

func TestGenerateInsightCandidatesRiskFlagsSurfaceInOverview(t *testing.T) {
	signals := SignalBundle{
		RiskFlags: []RiskFlag{{Name: "Frequent late meals", Reason: "late on 3 days"}},
	}
	candidates := generateInsightCandidates([]DailyStat{{Day: "2026-03-01"}}, DomainSummaries{}, signals)

	var overview *InsightCandidate
	for idx := range candidates {
		if candidates[idx].Section == SectionOverview {
			overview = &candidates[idx]
		}
	}
	if overview == nil || overview.Bucket != BucketAvoid || overview.Title != "Frequent late meals" {
		t.Fatalf("expected risk flag in overview avoid bucket, got %+v", candidates)
	}
}

func TestGenerateInsightCandidatesJournalCrossReference(t *testing.T) {
	mood := 4.2
	stats := []DailyStat{{Day: "2026-03-03", Calories: 1900, WaterML: 2100, MoodAvg: &mood}}
	sums := DomainSummaries{
		Journal: JournalSummary{
			Highlights: []JournalHighlight{{Day: "2026-03-03", Snippet: "felt great after the hike"}},
		},
	}

	candidates := generateInsightCandidates(stats, sums, SignalBundle{})
	found := false
	for _, c := range candidates {
		if c.Section == SectionJournal {
			found = true
			if !strings.Contains(c.Evidence, "1900 kcal") || !strings.Contains(c.Evidence, "mood 4.2") {
				t.Fatalf("expected the day's stats in evidence, got %q", c.Evidence)
			}
		}
	}
	if !found {
		t.Fatalf("expected a journal candidate, got %+v", candidates)
	}
}

func TestGenerateInsightCandidatesGoals(t *testing.T) {
	up, down := 1.5, -0.8
	sums := DomainSummaries{
		Checkins: CheckinSummary{
			Goals: []GoalSummary{
				{Name: "Sleep", Average: 7.2, Trend: &up},
				{Name: "Steps", Average: 6000, Trend: &down},
			},
		},
	}
	candidates := generateInsightCandidates(nil, sums, SignalBundle{})

	titles := map[string]Bucket{}
	for _, c := range candidates {
		titles[c.Title] = c.Bucket
	}
	if titles["Goal improving: Sleep"] != BucketWorking {
		t.Fatalf("expected improving goal candidate, got %+v", candidates)
	}
	if titles["Goal slipping: Steps"] != BucketSuggested {
		t.Fatalf("expected slipping goal candidate, got %+v", candidates)
	}
}
