package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vitalog/backend/internal/config"
	"vitalog/backend/internal/report"
)

type stubStore struct {
	dueStates []report.ReportState
}

func (s *stubStore) GetUserByID(context.Context, string) (report.User, error) {
	return report.User{}, report.ErrUserNotFound
}

func (s *stubStore) GetUserByEmail(context.Context, string) (report.User, error) {
	return report.User{}, report.ErrUserNotFound
}

func (s *stubStore) GetReportState(context.Context, string) (*report.ReportState, error) {
	return nil, nil
}

func (s *stubStore) UpsertReportState(context.Context, report.ReportState) error { return nil }

func (s *stubStore) ListDueReportStates(context.Context, time.Time, int) ([]report.ReportState, error) {
	return s.dueStates, nil
}

func (s *stubStore) FindReport(context.Context, string, time.Time) (*report.Report, error) {
	return nil, nil
}

func (s *stubStore) GetLatestReadyReport(context.Context, string) (*report.Report, error) {
	return nil, report.ErrReportNotFound
}

func (s *stubStore) CreateRunningReport(context.Context, report.Report) error { return nil }

func (s *stubStore) UpdateReport(context.Context, report.Report) error { return nil }

func (s *stubStore) ListFoodLogs(context.Context, string, time.Time, time.Time) ([]report.FoodLog, error) {
	return nil, nil
}

func (s *stubStore) ListWaterLogs(context.Context, string, time.Time, time.Time) ([]report.WaterLog, error) {
	return nil, nil
}

func (s *stubStore) ListExerciseLogs(context.Context, string, time.Time, time.Time) ([]report.ExerciseLog, error) {
	return nil, nil
}

func (s *stubStore) ListMoodLogs(context.Context, string, time.Time, time.Time) ([]report.MoodLog, error) {
	return nil, nil
}

func (s *stubStore) ListSymptomLogs(context.Context, string, time.Time, time.Time) ([]report.SymptomLog, error) {
	return nil, nil
}

func (s *stubStore) ListCheckinLogs(context.Context, string, time.Time, time.Time) ([]report.CheckinLog, error) {
	return nil, nil
}

func (s *stubStore) ListLabResults(context.Context, string, time.Time, time.Time) ([]report.LabResult, error) {
	return nil, nil
}

func (s *stubStore) ListChatMessages(context.Context, string, time.Time, time.Time) ([]report.ChatMessage, error) {
	return nil, nil
}

func (s *stubStore) ListJournalEntries(context.Context, string, time.Time, time.Time) ([]report.JournalEntry, error) {
	return nil, nil
}

func testApp(cfg config.Config, store report.Store) *App {
	gin.SetMode(gin.TestMode)
	if len(cfg.CORSAllowOrigins) == 0 {
		cfg.CORSAllowOrigins = []string{"http://localhost:3000"}
	}
	return New(cfg, nil, store, nil)
}

func TestHealthEndpoint(t *testing.T) {
	app := testApp(config.Config{APIPrefix: "/api/v1"}, &stubStore{})
	router := app.Router()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "vitalog-api") {
		t.Fatalf("unexpected health body: %s", recorder.Body.String())
	}
}

func TestSchedulerEndpointRequiresSecret(t *testing.T) {
	app := testApp(config.Config{APIPrefix: "/api/v1", SchedulerSecret: "top-secret"}, &stubStore{})
	router := app.Router()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/internal/scheduler/reports/run", nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/internal/scheduler/reports/run", nil)
	request.Header.Set("X-Scheduler-Secret", "wrong")
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong secret, got %d", recorder.Code)
	}
}

func TestSchedulerEndpointRejectsWhenSecretUnset(t *testing.T) {
	app := testApp(config.Config{APIPrefix: "/api/v1"}, &stubStore{})
	router := app.Router()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/internal/scheduler/reports/run", nil)
	request.Header.Set("X-Scheduler-Secret", "")
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no secret is configured, got %d", recorder.Code)
	}
}

func TestSchedulerEndpointEmptyDueList(t *testing.T) {
	app := testApp(config.Config{APIPrefix: "/api/v1", SchedulerSecret: "top-secret"}, &stubStore{})
	router := app.Router()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/internal/scheduler/reports/run", strings.NewReader(`{}`))
	request.Header.Set("X-Scheduler-Secret", "top-secret")
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Count != 0 {
		t.Fatalf("expected no due users, got %d", body.Count)
	}
}

func TestSchedulerEmailTriggerRestricted(t *testing.T) {
	cfg := config.Config{APIPrefix: "/api/v1", SchedulerSecret: "top-secret", ManualTriggerEmail: "dev@example.com"}
	app := testApp(cfg, &stubStore{})
	router := app.Router()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(
		http.MethodPost,
		"/internal/scheduler/reports/run",
		strings.NewReader(`{"email": "attacker@example.com"}`),
	)
	request.Header.Set("X-Scheduler-Secret", "top-secret")
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unlisted email, got %d", recorder.Code)
	}
}

func TestAPIRoutesRequireBearerToken(t *testing.T) {
	app := testApp(config.Config{APIPrefix: "/api/v1", JWTSecret: "0123456789abcdef", JWTAlgorithm: "HS256"}, &stubStore{})
	router := app.Router()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/reports/weekly", nil)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", recorder.Code)
	}
}

func TestToReportViewHidesLockedBody(t *testing.T) {
	ready := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	rep := &report.Report{
		ID:          "r1",
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		Status:      report.StatusLocked,
		Summary:     "hidden until unlocked",
		ReadyAt:     &ready,
	}

	view := toReportView(rep)
	if view.Summary != lockedSummaryPlaceholder {
		t.Fatalf("locked view must show the placeholder summary, got %q", view.Summary)
	}
	if view.Sections != nil || view.DataSummary != nil || view.Model != "" {
		t.Fatalf("locked view must hide the body, got %+v", view)
	}
	if view.Status != "LOCKED" || view.PeriodStart != "2026-03-01" {
		t.Fatalf("unexpected locked view metadata: %+v", view)
	}

	rep.Status = report.StatusReady
	view = toReportView(rep)
	if view.Summary != "hidden until unlocked" || view.Sections == nil {
		t.Fatalf("ready view must include the body, got %+v", view)
	}
}

func TestParseLoggedAt(t *testing.T) {
	ts, ok := parseLoggedAt("2026-03-01T12:30:00Z")
	if !ok || ts.Hour() != 12 {
		t.Fatalf("expected RFC3339 parse, got %v ok=%v", ts, ok)
	}
	if _, ok := parseLoggedAt("03/01/2026"); ok {
		t.Fatalf("expected malformed timestamp to fail")
	}
	if ts, ok := parseLoggedAt(""); !ok || time.Since(ts) > time.Minute {
		t.Fatalf("expected empty timestamp to default to now, got %v", ts)
	}
}

func TestValidLocalDate(t *testing.T) {
	if !validLocalDate("2026-03-01") || !validLocalDate("") {
		t.Fatalf("expected valid local dates to pass")
	}
	if validLocalDate("01-03-2026") {
		t.Fatalf("expected malformed local date to fail")
	}
}

func TestClaimHasAudience(t *testing.T) {
	if !claimHasAudience("expected", "expected") {
		t.Fatalf("expected string audience to match")
	}
	if claimHasAudience("other", "expected") {
		t.Fatalf("expected mismatched string audience to fail")
	}
	if !claimHasAudience([]any{"x", "expected"}, "expected") {
		t.Fatalf("expected []any audience to match")
	}
	if claimHasAudience(nil, "expected") {
		t.Fatalf("expected nil audience to fail")
	}
}
