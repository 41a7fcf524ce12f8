package report

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrReportNotFound = errors.New("report not found")
)

// Store is the persistence surface the report pipeline depends on. The pgx
// implementation lives in pgstore.go; tests substitute in-memory fakes.
type Store interface {
	GetUserByID(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	GetReportState(ctx context.Context, userID string) (*ReportState, error)
	UpsertReportState(ctx context.Context, state ReportState) error
	ListDueReportStates(ctx context.Context, now time.Time, limit int) ([]ReportState, error)

	FindReport(ctx context.Context, userID string, periodStart time.Time) (*Report, error)
	GetLatestReadyReport(ctx context.Context, userID string) (*Report, error)
	CreateRunningReport(ctx context.Context, rep Report) error
	UpdateReport(ctx context.Context, rep Report) error

	ListFoodLogs(ctx context.Context, userID string, from, to time.Time) ([]FoodLog, error)
	ListWaterLogs(ctx context.Context, userID string, from, to time.Time) ([]WaterLog, error)
	ListExerciseLogs(ctx context.Context, userID string, from, to time.Time) ([]ExerciseLog, error)
	ListMoodLogs(ctx context.Context, userID string, from, to time.Time) ([]MoodLog, error)
	ListSymptomLogs(ctx context.Context, userID string, from, to time.Time) ([]SymptomLog, error)
	ListCheckinLogs(ctx context.Context, userID string, from, to time.Time) ([]CheckinLog, error)
	ListLabResults(ctx context.Context, userID string, from, to time.Time) ([]LabResult, error)
	ListChatMessages(ctx context.Context, userID string, from, to time.Time) ([]ChatMessage, error)
	ListJournalEntries(ctx context.Context, userID string, from, to time.Time) ([]JournalEntry, error)
}

// CreditLedger guards the paid part of report generation. Charge deducts
// atomically and reports false (not an error) when the balance is too low.
type CreditLedger interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	Charge(ctx context.Context, userID string, credits int, reason string) (bool, error)
}

// NotificationQueue delivers the "your report is ready" signal. Failures are
// logged by callers, never propagated; a report is not less ready because the
// notification row did not insert.
type NotificationQueue interface {
	Enqueue(ctx context.Context, userID, kind, title, body string) error
}
