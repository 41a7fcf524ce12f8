package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitalog/backend/internal/report"
)

const statsCacheTTL = 5 * time.Minute

type cachedWeekStats struct {
	stats      []report.DailyStat
	computedAt time.Time
}

type logEnvelope struct {
	LoggedAt  string `json:"loggedAt"`
	LocalDate string `json:"localDate"`

	Name      string         `json:"name"`
	MealType  string         `json:"mealType"`
	Nutrients map[string]any `json:"nutrients"`

	Label    string  `json:"label"`
	AmountML float64 `json:"amountMl"`

	Activity  string  `json:"activity"`
	Minutes   float64 `json:"minutes"`
	Intensity string  `json:"intensity"`

	Rating   float64 `json:"rating"`
	Note     string  `json:"note"`
	Severity float64 `json:"severity"`

	Goal  string `json:"goal"`
	Value string `json:"value"`

	LabValue float64 `json:"value_num"`
	Unit     string  `json:"unit"`

	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

func parseLoggedAt(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Now().UTC(), true
	}
	ts, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

func validLocalDate(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", raw)
	return err == nil
}

// createLog ingests one raw record for a domain. After the insert it primes
// the weekly stats cache in a detached goroutine and waits a bounded time for
// it; on timeout the response returns anyway and the prime finishes in the
// background.
func (a *App) createLog(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	domain := strings.ToLower(strings.TrimSpace(c.Param("domain")))
	var payload logEnvelope
	if !mustJSON(c, &payload) {
		return
	}

	loggedAt, ok := parseLoggedAt(payload.LoggedAt)
	if !ok {
		writeError(c, http.StatusBadRequest, "loggedAt must be RFC3339")
		return
	}
	if !validLocalDate(payload.LocalDate) {
		writeError(c, http.StatusBadRequest, "localDate must be YYYY-MM-DD")
		return
	}

	ctx := c.Request.Context()
	id := uuid.NewString()
	var err error

	switch domain {
	case "food":
		if strings.TrimSpace(payload.Name) == "" {
			writeError(c, http.StatusBadRequest, "name is required")
			return
		}
		nutrientsRaw, marshalErr := json.Marshal(payload.Nutrients)
		if marshalErr != nil {
			nutrientsRaw = []byte("{}")
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "FoodLog" (id, "userId", "loggedAt", "localDate", name, "mealType", nutrients, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, strings.TrimSpace(payload.Name), payload.MealType, nutrientsRaw,
		)
	case "water":
		if payload.AmountML <= 0 {
			writeError(c, http.StatusBadRequest, "amountMl must be positive")
			return
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "WaterLog" (id, "userId", "loggedAt", "localDate", label, "amountMl", "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, payload.Label, payload.AmountML,
		)
	case "exercise":
		if strings.TrimSpace(payload.Activity) == "" || payload.Minutes <= 0 {
			writeError(c, http.StatusBadRequest, "activity and positive minutes are required")
			return
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "ExerciseLog" (id, "userId", "loggedAt", "localDate", activity, minutes, intensity, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, strings.TrimSpace(payload.Activity), payload.Minutes, payload.Intensity,
		)
	case "mood":
		if payload.Rating < 1 || payload.Rating > 10 {
			writeError(c, http.StatusBadRequest, "rating must be between 1 and 10")
			return
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "MoodLog" (id, "userId", "loggedAt", "localDate", rating, note, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, payload.Rating, payload.Note,
		)
	case "symptom":
		if strings.TrimSpace(payload.Name) == "" {
			writeError(c, http.StatusBadRequest, "name is required")
			return
		}
		if payload.Severity < 0 || payload.Severity > 10 {
			writeError(c, http.StatusBadRequest, "severity must be between 0 and 10")
			return
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "SymptomLog" (id, "userId", "loggedAt", "localDate", name, severity, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, strings.TrimSpace(payload.Name), payload.Severity,
		)
	case "checkin":
		if strings.TrimSpace(payload.Goal) == "" {
			writeError(c, http.StatusBadRequest, "goal is required")
			return
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "CheckinLog" (id, "userId", "loggedAt", "localDate", goal, value, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, strings.TrimSpace(payload.Goal), payload.Value,
		)
	case "lab":
		if strings.TrimSpace(payload.Name) == "" {
			writeError(c, http.StatusBadRequest, "name is required")
			return
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "LabResult" (id, "userId", "collectedAt", "localDate", name, value, unit, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, strings.TrimSpace(payload.Name), payload.LabValue, payload.Unit,
		)
	case "journal":
		if strings.TrimSpace(payload.Text) == "" {
			writeError(c, http.StatusBadRequest, "text is required")
			return
		}
		tags := payload.Tags
		if tags == nil {
			tags = []string{}
		}
		_, err = a.db.Exec(
			ctx,
			`INSERT INTO "JournalEntry" (id, "userId", "loggedAt", "localDate", text, tags, "createdAt")
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NOW())`,
			id, user.ID, loggedAt, payload.LocalDate, payload.Text, tags,
		)
	default:
		writeError(c, http.StatusNotFound, "Unknown log domain")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to save log")
		return
	}

	a.primeStatsWithDeadline(user.ID)

	c.JSON(http.StatusCreated, gin.H{"id": id, "domain": domain})
}

func (a *App) primeStatsWithDeadline(userID string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		primeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.primeWeekStats(primeCtx, userID)
	}()

	deadline := time.Duration(a.cfg.StatsPrimeTimeoutMS) * time.Millisecond
	if deadline <= 0 {
		deadline = 2500 * time.Millisecond
	}
	select {
	case <-done:
	case <-time.After(deadline):
	}
}

func (a *App) primeWeekStats(ctx context.Context, userID string) {
	stats, err := a.runner.WeekStats(ctx, userID)
	if err != nil {
		log.Printf("weekly stats prime failed for user %s: %v", userID, err)
		return
	}
	a.statsMu.Lock()
	a.statsCache[userID] = cachedWeekStats{stats: stats, computedAt: time.Now()}
	a.statsMu.Unlock()
}

func (a *App) getWeeklyStats(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	a.statsMu.RLock()
	cached, hit := a.statsCache[user.ID]
	a.statsMu.RUnlock()
	if hit && time.Since(cached.computedAt) < statsCacheTTL {
		c.JSON(http.StatusOK, gin.H{"dailyStats": cached.stats, "cached": true})
		return
	}

	stats, err := a.runner.WeekStats(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to compute weekly stats")
		return
	}
	a.statsMu.Lock()
	a.statsCache[user.ID] = cachedWeekStats{stats: stats, computedAt: time.Now()}
	a.statsMu.Unlock()

	c.JSON(http.StatusOK, gin.H{"dailyStats": stats, "cached": false})
}
