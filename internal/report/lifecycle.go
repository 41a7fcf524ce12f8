package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vitalog/backend/internal/config"
)

type TriggerSource string

const (
	TriggerManual    TriggerSource = "manual"
	TriggerScheduler TriggerSource = "scheduler"
)

// Trigger outcome statuses and their reasons.
const (
	TriggerStatusReady    = "ready"
	TriggerStatusLocked   = "locked"
	TriggerStatusRunning  = "running"
	TriggerStatusSkipped  = "skipped"
	TriggerStatusDisabled = "disabled"
	TriggerStatusFailed   = "failed"

	ReasonReportsDisabled    = "reports_disabled"
	ReasonNoSchedule         = "no_schedule"
	ReasonNotDue             = "not_due"
	ReasonReportCreateFailed = "report_create_failed"
	ReasonUserMissing        = "user_missing"
)

const (
	notificationKindReportReady  = "weekly_report_ready"
	notificationKindReportLocked = "weekly_report_locked"
	notificationKindReportFailed = "weekly_report_failed"
)

type TriggerResult struct {
	Status string  `json:"status"`
	Reason string  `json:"reason,omitempty"`
	Report *Report `json:"report,omitempty"`
}

// Runner drives one report attempt end to end: schedule checks, idempotent
// row creation, log fan-out, synthesis, billing and the terminal state write.
type Runner struct {
	store            Store
	credits          CreditLedger
	notify           NotificationQueue
	synth            *Synthesizer
	signalCfg        SignalConfig
	intervalDays     int
	preflightCredits int
	runningTimeout   time.Duration
	now              func() time.Time
}

func NewRunner(store Store, credits CreditLedger, notify NotificationQueue, synth *Synthesizer, cfg config.Config) *Runner {
	intervalDays := cfg.ReportIntervalDays
	if intervalDays <= 0 {
		intervalDays = 7
	}
	timeoutSeconds := cfg.ReportTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 120
	}
	return &Runner{
		store:            store,
		credits:          credits,
		notify:           notify,
		synth:            synth,
		signalCfg:        DefaultSignalConfig(),
		intervalDays:     intervalDays,
		preflightCredits: cfg.PreflightCostCents,
		runningTimeout:   time.Duration(timeoutSeconds) * time.Second,
		now:              time.Now,
	}
}

// Trigger runs or reuses the report for the user's current trailing period.
// The scheduler path respects the per-user schedule; the manual path bypasses
// the due date and bootstraps a schedule row when none exists. An error return
// means infrastructure failure, not a domain outcome.
func (r *Runner) Trigger(ctx context.Context, userID string, source TriggerSource) (TriggerResult, error) {
	now := r.now()

	user, err := r.store.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return TriggerResult{Status: TriggerStatusFailed, Reason: ReasonUserMissing}, nil
	}
	if err != nil {
		return TriggerResult{}, err
	}

	state, err := r.store.GetReportState(ctx, userID)
	if err != nil {
		return TriggerResult{}, err
	}

	switch source {
	case TriggerScheduler:
		if state == nil {
			return TriggerResult{Status: TriggerStatusSkipped, Reason: ReasonNoSchedule}, nil
		}
		if !state.ReportsEnabled {
			return TriggerResult{Status: TriggerStatusSkipped, Reason: ReasonReportsDisabled}, nil
		}
		if state.NextReportDueAt == nil || now.Before(*state.NextReportDueAt) {
			return TriggerResult{Status: TriggerStatusSkipped, Reason: ReasonNotDue}, nil
		}
	default:
		if state != nil && !state.ReportsEnabled {
			return TriggerResult{Status: TriggerStatusDisabled}, nil
		}
	}

	loc := loadLocation(user.Timezone)
	periodEnd := startOfLocalDay(now, loc)
	periodStart := periodEnd.AddDate(0, 0, -r.intervalDays)

	existing, err := r.store.FindReport(ctx, userID, periodStart)
	if err != nil {
		return TriggerResult{}, err
	}
	if existing != nil {
		switch existing.Status {
		case StatusReady:
			return TriggerResult{Status: TriggerStatusReady, Report: existing}, nil
		case StatusLocked:
			return TriggerResult{Status: TriggerStatusLocked, Report: existing}, nil
		case StatusRunning:
			if now.Sub(existing.UpdatedAt) < r.runningTimeout {
				return TriggerResult{Status: TriggerStatusRunning}, nil
			}
			log.Printf("report %s stuck in RUNNING for %s, taking over", existing.ID, now.Sub(existing.UpdatedAt))
		}
	}

	rep := Report{
		ID:          uuid.NewString(),
		UserID:      userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      StatusRunning,
	}
	if existing != nil {
		rep.ID = existing.ID
	}
	if err := r.store.CreateRunningReport(ctx, rep); err != nil {
		log.Printf("report row create failed for user %s: %v", userID, err)
		// Still stamp the attempt so the schedule moves forward and a
		// later run can retry.
		r.writeState(ctx, userID, state, now, TriggerStatusFailed)
		rep.Status = StatusFailed
		r.notifyTerminal(ctx, rep)
		return TriggerResult{Status: TriggerStatusFailed, Reason: ReasonReportCreateFailed}, nil
	}

	result := r.run(ctx, user, rep, now)
	r.writeState(ctx, userID, state, now, result.Status)
	return result, nil
}

// run executes the pipeline for an already-created RUNNING row and writes the
// terminal state. It never returns an error; failures become a FAILED row.
func (r *Runner) run(ctx context.Context, user User, rep Report, now time.Time) TriggerResult {
	logs := r.fetchWeekLogs(ctx, user.ID, rep.PeriodStart, rep.PeriodEnd)
	week := buildWeekContext(user.ID, user.Timezone, rep.PeriodStart, rep.PeriodEnd, logs, r.signalCfg)

	balance, err := r.credits.GetBalance(ctx, user.ID)
	if err != nil {
		log.Printf("credit balance lookup failed for user %s: %v", user.ID, err)
		return r.finishFailed(ctx, rep)
	}
	if balance < r.preflightCredits {
		fallback := buildFallbackReport(week)
		rep.Summary = fallback.Summary
		rep.Sections = dedupSections(fallback.Sections)
		rep.DataSummary = buildDataSummary(week, SynthesisOutcome{Status: SynthesisDisabled})
		rep.Status = StatusLocked
		rep.CreditsCharged = 0
		if err := r.store.UpdateReport(ctx, rep); err != nil {
			log.Printf("report update failed for %s: %v", rep.ID, err)
			return r.finishFailed(ctx, rep)
		}
		r.notifyTerminal(ctx, rep)
		return TriggerResult{Status: TriggerStatusLocked, Report: &rep}
	}

	outcome := r.synth.Synthesize(ctx, week)

	rep.Summary = outcome.Summary
	rep.Sections = outcome.Sections
	rep.Model = outcome.Model
	rep.DataSummary = buildDataSummary(week, outcome)

	cost := outcome.CostCents
	if cost < 1 {
		cost = 1
	}
	charged, err := r.credits.Charge(ctx, user.ID, cost, "weekly_report")
	if err != nil {
		log.Printf("credit charge failed for user %s: %v", user.ID, err)
		return r.finishFailed(ctx, rep)
	}
	if !charged {
		rep.Status = StatusLocked
		rep.CreditsCharged = 0
		if err := r.store.UpdateReport(ctx, rep); err != nil {
			log.Printf("report update failed for %s: %v", rep.ID, err)
			return r.finishFailed(ctx, rep)
		}
		r.notifyTerminal(ctx, rep)
		return TriggerResult{Status: TriggerStatusLocked, Report: &rep}
	}

	rep.Status = StatusReady
	rep.CreditsCharged = cost
	rep.ReadyAt = &now
	if err := r.store.UpdateReport(ctx, rep); err != nil {
		log.Printf("report update failed for %s: %v", rep.ID, err)
		return r.finishFailed(ctx, rep)
	}

	r.notifyTerminal(ctx, rep)
	return TriggerResult{Status: TriggerStatusReady, Report: &rep}
}

func (r *Runner) finishFailed(ctx context.Context, rep Report) TriggerResult {
	rep.Status = StatusFailed
	rep.CreditsCharged = 0
	if err := r.store.UpdateReport(ctx, rep); err != nil {
		log.Printf("failed-state write failed for report %s: %v", rep.ID, err)
	}
	r.notifyTerminal(ctx, rep)
	return TriggerResult{Status: TriggerStatusFailed}
}

// notifyTerminal enqueues the outcome notification for a report that reached
// a terminal status. Enqueue failures are logged only; delivery never gates
// the report itself.
func (r *Runner) notifyTerminal(ctx context.Context, rep Report) {
	var kind, title string
	switch rep.Status {
	case StatusReady:
		kind, title = notificationKindReportReady, "Your weekly report is ready"
	case StatusLocked:
		kind, title = notificationKindReportLocked, "Your weekly report needs credits"
	case StatusFailed:
		kind, title = notificationKindReportFailed, "Your weekly report could not be generated"
	default:
		return
	}
	body := fmt.Sprintf("Covering %s to %s.", rep.PeriodStart.Format(dayKeyLayout), rep.PeriodEnd.Format(dayKeyLayout))
	if err := r.notify.Enqueue(ctx, rep.UserID, kind, title, body); err != nil {
		log.Printf("%s notification enqueue failed for user %s: %v", kind, rep.UserID, err)
	}
}

// writeState records the attempt on the per-user schedule row. Manual runs
// bootstrap the row when it does not exist yet.
func (r *Runner) writeState(ctx context.Context, userID string, prior *ReportState, now time.Time, status string) {
	next := now.AddDate(0, 0, r.intervalDays)
	state := ReportState{
		UserID:          userID,
		ReportsEnabled:  true,
		LastAttemptAt:   &now,
		NextReportDueAt: &next,
		LastStatus:      status,
	}
	if prior != nil {
		state.ReportsEnabled = prior.ReportsEnabled
		state.LastReportAt = prior.LastReportAt
	}
	if status == TriggerStatusReady {
		state.LastReportAt = &now
	}
	if err := r.store.UpsertReportState(ctx, state); err != nil {
		log.Printf("report state write failed for user %s: %v", userID, err)
	}
}

// WeekStats aggregates the live trailing week including today, for the stats
// endpoint and its cache prime. No report row is involved.
func (r *Runner) WeekStats(ctx context.Context, userID string) ([]DailyStat, error) {
	user, err := r.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := loadLocation(user.Timezone)
	end := startOfLocalDay(r.now(), loc).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -r.intervalDays)

	logs := r.fetchWeekLogs(ctx, userID, start, end)
	stats, _ := aggregateDailyStats(logs, loc)
	return stats, nil
}

// fetchWeekLogs loads all nine domains concurrently. A failed domain is
// logged and contributes an empty slice; the report still runs on the rest.
func (r *Runner) fetchWeekLogs(ctx context.Context, userID string, from, to time.Time) WeekLogs {
	var logs WeekLogs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := r.store.ListFoodLogs(gctx, userID, from, to)
		if err != nil {
			log.Printf("food log fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Food = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListWaterLogs(gctx, userID, from, to)
		if err != nil {
			log.Printf("water log fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Water = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListExerciseLogs(gctx, userID, from, to)
		if err != nil {
			log.Printf("exercise log fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Exercise = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListMoodLogs(gctx, userID, from, to)
		if err != nil {
			log.Printf("mood log fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Mood = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListSymptomLogs(gctx, userID, from, to)
		if err != nil {
			log.Printf("symptom log fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Symptoms = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListCheckinLogs(gctx, userID, from, to)
		if err != nil {
			log.Printf("checkin log fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Checkins = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListLabResults(gctx, userID, from, to)
		if err != nil {
			log.Printf("lab result fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Labs = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListChatMessages(gctx, userID, from, to)
		if err != nil {
			log.Printf("chat message fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Chat = items
		return nil
	})
	g.Go(func() error {
		items, err := r.store.ListJournalEntries(gctx, userID, from, to)
		if err != nil {
			log.Printf("journal entry fetch failed for user %s: %v", userID, err)
			return nil
		}
		logs.Journal = items
		return nil
	})

	_ = g.Wait()
	return logs
}

func buildDataSummary(week WeekContext, outcome SynthesisOutcome) map[string]any {
	return map[string]any{
		"daysWithData":    len(week.DailyStats),
		"droppedRecords":  week.DroppedRecords,
		"candidateCount":  len(week.Candidates),
		"riskFlagCount":   len(week.Signals.RiskFlags),
		"synthesisStatus": outcome.Status,
		"usedLLM":         outcome.UsedLLM,
	}
}

func startOfLocalDay(ts time.Time, loc *time.Location) time.Time {
	local := ts.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
