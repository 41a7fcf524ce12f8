package report

import (
	"math"
	"time"
)

// Report status values. A report row is created as RUNNING and mutated in
// place until it reaches a terminal state.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusReady   Status = "READY"
	StatusLocked  Status = "LOCKED"
	StatusFailed  Status = "FAILED"
)

type Bucket string

const (
	BucketWorking   Bucket = "working"
	BucketSuggested Bucket = "suggested"
	BucketAvoid     Bucket = "avoid"
)

// SectionKey identifies one of the ten fixed report sections.
type SectionKey string

const (
	SectionOverview  SectionKey = "overview"
	SectionNutrition SectionKey = "nutrition"
	SectionHydration SectionKey = "hydration"
	SectionExercise  SectionKey = "exercise"
	SectionMood      SectionKey = "mood"
	SectionSymptoms  SectionKey = "symptoms"
	SectionLifestyle SectionKey = "lifestyle"
	SectionLabs      SectionKey = "labs"
	SectionJournal   SectionKey = "journal"
	SectionGoals     SectionKey = "goals"
)

// SectionKeys is the canonical ordering used for prompts, merging and
// serialization.
var SectionKeys = []SectionKey{
	SectionOverview,
	SectionNutrition,
	SectionHydration,
	SectionExercise,
	SectionMood,
	SectionSymptoms,
	SectionLifestyle,
	SectionLabs,
	SectionJournal,
	SectionGoals,
}

type InsightItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type SectionBuckets struct {
	Working   []InsightItem `json:"working"`
	Suggested []InsightItem `json:"suggested"`
	Avoid     []InsightItem `json:"avoid"`
}

// Sections is the fixed 10-section report body. Named fields instead of a
// string-keyed map so a missing section is a compile error, not a nil lookup.
type Sections struct {
	Overview  SectionBuckets `json:"overview"`
	Nutrition SectionBuckets `json:"nutrition"`
	Hydration SectionBuckets `json:"hydration"`
	Exercise  SectionBuckets `json:"exercise"`
	Mood      SectionBuckets `json:"mood"`
	Symptoms  SectionBuckets `json:"symptoms"`
	Lifestyle SectionBuckets `json:"lifestyle"`
	Labs      SectionBuckets `json:"labs"`
	Journal   SectionBuckets `json:"journal"`
	Goals     SectionBuckets `json:"goals"`
}

func (s *Sections) Buckets(key SectionKey) *SectionBuckets {
	switch key {
	case SectionOverview:
		return &s.Overview
	case SectionNutrition:
		return &s.Nutrition
	case SectionHydration:
		return &s.Hydration
	case SectionExercise:
		return &s.Exercise
	case SectionMood:
		return &s.Mood
	case SectionSymptoms:
		return &s.Symptoms
	case SectionLifestyle:
		return &s.Lifestyle
	case SectionLabs:
		return &s.Labs
	case SectionJournal:
		return &s.Journal
	case SectionGoals:
		return &s.Goals
	}
	return nil
}

func (b *SectionBuckets) bucket(name Bucket) *[]InsightItem {
	switch name {
	case BucketWorking:
		return &b.Working
	case BucketSuggested:
		return &b.Suggested
	case BucketAvoid:
		return &b.Avoid
	}
	return nil
}

// Report is the persisted weekly report row.
type Report struct {
	ID             string
	UserID         string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Status         Status
	Summary        string
	Sections       Sections
	DataSummary    map[string]any
	Model          string
	CreditsCharged int
	ReadyAt        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReportState is the per-user scheduling row, one per user regardless of how
// many report periods exist.
type ReportState struct {
	UserID          string
	ReportsEnabled  bool
	LastAttemptAt   *time.Time
	LastReportAt    *time.Time
	NextReportDueAt *time.Time
	LastStatus      string
}

type User struct {
	ID       string
	Email    string
	Name     string
	Timezone string
}

// Raw per-domain log records. Each carries the event timestamp plus an
// optional client-supplied local date; day bucketing prefers the latter.
type FoodLog struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Name      string
	MealType  string
	Nutrients map[string]any
}

type WaterLog struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Label     string
	AmountML  float64
}

type ExerciseLog struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Activity  string
	Minutes   float64
	Intensity string
}

type MoodLog struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Rating    float64
	Note      string
}

type SymptomLog struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Name      string
	Severity  float64
}

type CheckinLog struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Goal      string
	Value     string
}

type LabResult struct {
	ID          string
	CollectedAt time.Time
	LocalDate   string
	Name        string
	Value       float64
	Unit        string
}

type ChatMessage struct {
	ID        string
	SentAt    time.Time
	LocalDate string
	Role      string
	Content   string
}

type JournalEntry struct {
	ID        string
	LoggedAt  time.Time
	LocalDate string
	Text      string
	Tags      []string
}

// WeekLogs bundles every domain's records for one report period.
type WeekLogs struct {
	Food     []FoodLog
	Water    []WaterLog
	Exercise []ExerciseLog
	Mood     []MoodLog
	Symptoms []SymptomLog
	Checkins []CheckinLog
	Labs     []LabResult
	Chat     []ChatMessage
	Journal  []JournalEntry
}

type TopItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyStat is the per-day aggregate joining all domains on the day key.
// MoodAvg is nil on days without mood entries.
type DailyStat struct {
	Day             string   `json:"day"`
	Calories        float64  `json:"calories"`
	ProteinG        float64  `json:"protein_g"`
	CarbsG          float64  `json:"carbs_g"`
	FatG            float64  `json:"fat_g"`
	FiberG          float64  `json:"fiber_g"`
	SugarG          float64  `json:"sugar_g"`
	SodiumMG        float64  `json:"sodium_mg"`
	WaterML         float64  `json:"water_ml"`
	ExerciseMinutes float64  `json:"exercise_minutes"`
	MoodAvg         *float64 `json:"mood_avg"`
	SymptomCount    float64  `json:"symptom_count"`
	CheckinCount    int      `json:"checkin_count"`
	JournalCount    int      `json:"journal_count"`
	ChatCount       int      `json:"chat_count"`
	TopFoods        []TopItem `json:"top_foods,omitempty"`
}

// Metric names used by the signal engine against DailyStat fields.
const (
	MetricCalories        = "calories"
	MetricProteinG        = "protein_g"
	MetricCarbsG          = "carbs_g"
	MetricFiberG          = "fiber_g"
	MetricSugarG          = "sugar_g"
	MetricSodiumMG        = "sodium_mg"
	MetricWaterML         = "water_ml"
	MetricExerciseMinutes = "exercise_minutes"
	MetricMoodAvg         = "mood_avg"
	MetricSymptomCount    = "symptom_count"
)

type CorrelationSignal struct {
	Metric    string   `json:"metric"`
	Outcome   string   `json:"outcome"`
	MetricAvg float64  `json:"metricAvg"`
	HighAvg   float64  `json:"highAvg"`
	LowAvg    float64  `json:"lowAvg"`
	Diff      float64  `json:"diff"`
	HighDays  []string `json:"highDays"`
	LowDays   []string `json:"lowDays"`
}

type TrendSignal struct {
	Metric        string  `json:"metric"`
	FirstAvg      float64 `json:"firstAvg"`
	SecondAvg     float64 `json:"secondAvg"`
	Diff          float64 `json:"diff"`
	Direction     string  `json:"direction"`
	Unit          string  `json:"unit"`
	ImprovesWhenUp *bool  `json:"improvesWhenUp"`
}

type RiskFlag struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// LateMealImpact compares mood and symptoms between late-meal days and the
// rest of the week.
type LateMealImpact struct {
	LateDays         []string `json:"lateDays"`
	LateMoodAvg      *float64 `json:"lateMoodAvg"`
	OtherMoodAvg     *float64 `json:"otherMoodAvg"`
	LateSymptomAvg   *float64 `json:"lateSymptomAvg"`
	OtherSymptomAvg  *float64 `json:"otherSymptomAvg"`
}

type SignalBundle struct {
	Correlations   []CorrelationSignal `json:"correlations"`
	Trends         []TrendSignal       `json:"trends"`
	RiskFlags      []RiskFlag          `json:"riskFlags"`
	LateMealImpact *LateMealImpact     `json:"lateMealImpact,omitempty"`
}

type InsightCandidate struct {
	Section  SectionKey `json:"section"`
	Bucket   Bucket     `json:"bucket"`
	Title    string     `json:"title"`
	Evidence string     `json:"evidence"`
	Action   string     `json:"action"`
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round0(v float64) float64 { return math.Round(v) }
