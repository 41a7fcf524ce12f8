package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vitalog/backend/internal/report"
)

type reportView struct {
	ID             string          `json:"id"`
	PeriodStart    string          `json:"periodStart"`
	PeriodEnd      string          `json:"periodEnd"`
	Status         string          `json:"status"`
	Summary        string          `json:"summary,omitempty"`
	Sections       *report.Sections `json:"sections,omitempty"`
	DataSummary    map[string]any  `json:"dataSummary,omitempty"`
	Model          string          `json:"model,omitempty"`
	CreditsCharged int             `json:"creditsCharged"`
	ReadyAt        *time.Time      `json:"readyAt,omitempty"`
}

// lockedSummaryPlaceholder is what a LOCKED report shows instead of its
// stored summary. The real content stays server-side until the row is READY.
const lockedSummaryPlaceholder = "Your weekly report is ready but locked. Add credits to unlock the full breakdown."

// toReportView hides the report body while the row is LOCKED; the metadata
// and placeholder are enough for the client to render the unlock screen.
func toReportView(rep *report.Report) *reportView {
	if rep == nil {
		return nil
	}
	view := &reportView{
		ID:             rep.ID,
		PeriodStart:    rep.PeriodStart.Format("2006-01-02"),
		PeriodEnd:      rep.PeriodEnd.Format("2006-01-02"),
		Status:         string(rep.Status),
		CreditsCharged: rep.CreditsCharged,
		ReadyAt:        rep.ReadyAt,
	}
	switch rep.Status {
	case report.StatusReady:
		view.Summary = rep.Summary
		sections := rep.Sections
		view.Sections = &sections
		view.DataSummary = rep.DataSummary
		view.Model = rep.Model
	case report.StatusLocked:
		view.Summary = lockedSummaryPlaceholder
	}
	return view
}

func (a *App) generateReport(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := a.runner.Trigger(c.Request.Context(), user.ID, report.TriggerManual)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Report generation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": result.Status,
		"reason": result.Reason,
		"report": toReportView(result.Report),
	})
}

func (a *App) getWeeklyReport(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	rep, err := a.store.GetLatestReadyReport(c.Request.Context(), user.ID)
	if errors.Is(err, report.ErrReportNotFound) {
		writeError(c, http.StatusNotFound, "No weekly report yet")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load report")
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": toReportView(rep)})
}

func (a *App) getReportState(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	state, err := a.store.GetReportState(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load report state")
		return
	}
	if state == nil {
		c.JSON(http.StatusOK, gin.H{
			"reportsEnabled": false,
			"scheduled":      false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reportsEnabled":  state.ReportsEnabled,
		"scheduled":       state.NextReportDueAt != nil,
		"lastAttemptAt":   state.LastAttemptAt,
		"lastReportAt":    state.LastReportAt,
		"nextReportDueAt": state.NextReportDueAt,
		"lastStatus":      state.LastStatus,
	})
}

func (a *App) updateReportState(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload struct {
		ReportsEnabled *bool `json:"reportsEnabled"`
	}
	if !mustJSON(c, &payload) {
		return
	}
	if payload.ReportsEnabled == nil {
		writeError(c, http.StatusBadRequest, "reportsEnabled is required")
		return
	}

	ctx := c.Request.Context()
	state, err := a.store.GetReportState(ctx, user.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load report state")
		return
	}
	if state == nil {
		state = &report.ReportState{UserID: user.ID}
	}
	state.ReportsEnabled = *payload.ReportsEnabled
	if state.ReportsEnabled && state.NextReportDueAt == nil {
		next := time.Now().AddDate(0, 0, a.cfg.ReportIntervalDays)
		state.NextReportDueAt = &next
	}
	if err := a.store.UpsertReportState(ctx, *state); err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to save report state")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reportsEnabled":  state.ReportsEnabled,
		"nextReportDueAt": state.NextReportDueAt,
	})
}

// runScheduledReports is the cron entry point. It is secret-gated rather than
// JWT-gated; the scheduler is not a user. A body with an email runs one user
// in manual mode, restricted to the configured local-dev address.
func (a *App) runScheduledReports(c *gin.Context) {
	secret := strings.TrimSpace(a.cfg.SchedulerSecret)
	if secret == "" || c.GetHeader("X-Scheduler-Secret") != secret {
		writeError(c, http.StatusUnauthorized, "Invalid scheduler secret")
		return
	}

	var payload struct {
		Email string `json:"email"`
		Limit int    `json:"limit"`
	}
	_ = c.ShouldBindJSON(&payload)
	ctx := c.Request.Context()

	if email := strings.TrimSpace(payload.Email); email != "" {
		allowed := strings.TrimSpace(a.cfg.ManualTriggerEmail)
		if allowed == "" || !strings.EqualFold(email, allowed) {
			writeError(c, http.StatusForbidden, "Email trigger not allowed")
			return
		}
		user, err := a.store.GetUserByEmail(ctx, email)
		if errors.Is(err, report.ErrUserNotFound) {
			writeError(c, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(c, http.StatusInternalServerError, "User lookup failed")
			return
		}
		result, err := a.runner.Trigger(ctx, user.ID, report.TriggerManual)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "Report generation failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": []gin.H{{"userId": user.ID, "status": result.Status, "reason": result.Reason}}})
		return
	}

	states, err := a.store.ListDueReportStates(ctx, time.Now(), payload.Limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to list due users")
		return
	}

	results := make([]gin.H, 0, len(states))
	for _, state := range states {
		result, err := a.runner.Trigger(ctx, state.UserID, report.TriggerScheduler)
		if err != nil {
			results = append(results, gin.H{"userId": state.UserID, "status": "error"})
			continue
		}
		results = append(results, gin.H{"userId": state.UserID, "status": result.Status, "reason": result.Reason})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}
