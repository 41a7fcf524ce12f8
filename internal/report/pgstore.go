package report

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the production Store backed by the Prisma-managed Postgres
// schema. Table and column names are quoted camelCase to match it.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.pool.QueryRow(
		ctx,
		`SELECT id, email, COALESCE(name, ''), COALESCE(timezone, '') FROM "User" WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PGStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.pool.QueryRow(
		ctx,
		`SELECT id, email, COALESCE(name, ''), COALESCE(timezone, '') FROM "User" WHERE lower(email) = lower($1)`,
		email,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PGStore) GetReportState(ctx context.Context, userID string) (*ReportState, error) {
	state := ReportState{UserID: userID}
	err := s.pool.QueryRow(
		ctx,
		`SELECT "reportsEnabled", "lastAttemptAt", "lastReportAt", "nextReportDueAt", COALESCE("lastStatus", '')
		 FROM "ReportState" WHERE "userId" = $1`,
		userID,
	).Scan(&state.ReportsEnabled, &state.LastAttemptAt, &state.LastReportAt, &state.NextReportDueAt, &state.LastStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *PGStore) UpsertReportState(ctx context.Context, state ReportState) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO "ReportState" ("userId", "reportsEnabled", "lastAttemptAt", "lastReportAt", "nextReportDueAt", "lastStatus", "updatedAt")
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT ("userId") DO UPDATE SET
		   "reportsEnabled" = EXCLUDED."reportsEnabled",
		   "lastAttemptAt" = EXCLUDED."lastAttemptAt",
		   "lastReportAt" = EXCLUDED."lastReportAt",
		   "nextReportDueAt" = EXCLUDED."nextReportDueAt",
		   "lastStatus" = EXCLUDED."lastStatus",
		   "updatedAt" = NOW()`,
		state.UserID,
		state.ReportsEnabled,
		state.LastAttemptAt,
		state.LastReportAt,
		state.NextReportDueAt,
		state.LastStatus,
	)
	return err
}

func (s *PGStore) ListDueReportStates(ctx context.Context, now time.Time, limit int) ([]ReportState, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.pool.Query(
		ctx,
		`SELECT "userId", "reportsEnabled", "lastAttemptAt", "lastReportAt", "nextReportDueAt", COALESCE("lastStatus", '')
		 FROM "ReportState"
		 WHERE "reportsEnabled" = TRUE AND "nextReportDueAt" IS NOT NULL AND "nextReportDueAt" <= $1
		 ORDER BY "nextReportDueAt" ASC
		 LIMIT $2`,
		now,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := []ReportState{}
	for rows.Next() {
		var state ReportState
		if err := rows.Scan(&state.UserID, &state.ReportsEnabled, &state.LastAttemptAt, &state.LastReportAt, &state.NextReportDueAt, &state.LastStatus); err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

const reportColumns = `id, "userId", "periodStart", "periodEnd", status, COALESCE(summary, ''),
	COALESCE(sections, '{}'::jsonb), COALESCE("dataSummary", '{}'::jsonb),
	COALESCE(model, ''), "creditsCharged", "readyAt", "createdAt", "updatedAt"`

func (s *PGStore) scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	var status string
	var sectionsRaw, dataSummaryRaw []byte
	err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.PeriodStart,
		&rep.PeriodEnd,
		&status,
		&rep.Summary,
		&sectionsRaw,
		&dataSummaryRaw,
		&rep.Model,
		&rep.CreditsCharged,
		&rep.ReadyAt,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	rep.Status = Status(status)
	if err := json.Unmarshal(sectionsRaw, &rep.Sections); err != nil {
		rep.Sections = Sections{}
	}
	rep.DataSummary = parseJSONMap(dataSummaryRaw)
	return &rep, nil
}

func (s *PGStore) FindReport(ctx context.Context, userID string, periodStart time.Time) (*Report, error) {
	row := s.pool.QueryRow(
		ctx,
		`SELECT `+reportColumns+` FROM "WeeklyReport" WHERE "userId" = $1 AND "periodStart" = $2`,
		userID,
		periodStart,
	)
	rep, err := s.scanReport(row)
	if errors.Is(err, ErrReportNotFound) {
		return nil, nil
	}
	return rep, err
}

func (s *PGStore) GetLatestReadyReport(ctx context.Context, userID string) (*Report, error) {
	row := s.pool.QueryRow(
		ctx,
		`SELECT `+reportColumns+`
		 FROM "WeeklyReport"
		 WHERE "userId" = $1 AND status IN ('READY', 'LOCKED')
		 ORDER BY "periodStart" DESC
		 LIMIT 1`,
		userID,
	)
	return s.scanReport(row)
}

func (s *PGStore) CreateRunningReport(ctx context.Context, rep Report) error {
	sectionsRaw, err := json.Marshal(rep.Sections)
	if err != nil {
		return err
	}
	dataSummaryRaw, err := json.Marshal(rep.DataSummary)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO "WeeklyReport"
		   (id, "userId", "periodStart", "periodEnd", status, summary, sections, "dataSummary", model, "creditsCharged", "readyAt", "createdAt", "updatedAt")
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		 ON CONFLICT ("userId", "periodStart") DO UPDATE SET
		   status = EXCLUDED.status,
		   "updatedAt" = NOW()`,
		rep.ID,
		rep.UserID,
		rep.PeriodStart,
		rep.PeriodEnd,
		string(rep.Status),
		rep.Summary,
		sectionsRaw,
		dataSummaryRaw,
		rep.Model,
		rep.CreditsCharged,
		rep.ReadyAt,
	)
	return err
}

func (s *PGStore) UpdateReport(ctx context.Context, rep Report) error {
	sectionsRaw, err := json.Marshal(rep.Sections)
	if err != nil {
		return err
	}
	dataSummaryRaw, err := json.Marshal(rep.DataSummary)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(
		ctx,
		`UPDATE "WeeklyReport" SET
		   status = $2,
		   summary = $3,
		   sections = $4,
		   "dataSummary" = $5,
		   model = $6,
		   "creditsCharged" = $7,
		   "readyAt" = $8,
		   "updatedAt" = NOW()
		 WHERE id = $1`,
		rep.ID,
		string(rep.Status),
		rep.Summary,
		sectionsRaw,
		dataSummaryRaw,
		rep.Model,
		rep.CreditsCharged,
		rep.ReadyAt,
	)
	return err
}

func (s *PGStore) ListFoodLogs(ctx context.Context, userID string, from, to time.Time) ([]FoodLog, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(name, ''), COALESCE("mealType", ''), COALESCE(nutrients, '{}'::jsonb)
		 FROM "FoodLog"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []FoodLog{}
	for rows.Next() {
		var item FoodLog
		var nutrientsRaw []byte
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Name, &item.MealType, &nutrientsRaw); err != nil {
			return nil, err
		}
		item.Nutrients = parseJSONMap(nutrientsRaw)
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

func (s *PGStore) ListWaterLogs(ctx context.Context, userID string, from, to time.Time) ([]WaterLog, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(label, ''), COALESCE("amountMl", 0)
		 FROM "WaterLog"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []WaterLog{}
	for rows.Next() {
		var item WaterLog
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Label, &item.AmountML); err != nil {
			return nil, err
		}
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

func (s *PGStore) ListExerciseLogs(ctx context.Context, userID string, from, to time.Time) ([]ExerciseLog, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(activity, ''), COALESCE(minutes, 0), COALESCE(intensity, '')
		 FROM "ExerciseLog"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []ExerciseLog{}
	for rows.Next() {
		var item ExerciseLog
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Activity, &item.Minutes, &item.Intensity); err != nil {
			return nil, err
		}
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

func (s *PGStore) ListMoodLogs(ctx context.Context, userID string, from, to time.Time) ([]MoodLog, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(rating, 0), COALESCE(note, '')
		 FROM "MoodLog"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []MoodLog{}
	for rows.Next() {
		var item MoodLog
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Rating, &item.Note); err != nil {
			return nil, err
		}
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

func (s *PGStore) ListSymptomLogs(ctx context.Context, userID string, from, to time.Time) ([]SymptomLog, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(name, ''), COALESCE(severity, 0)
		 FROM "SymptomLog"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []SymptomLog{}
	for rows.Next() {
		var item SymptomLog
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Name, &item.Severity); err != nil {
			return nil, err
		}
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

func (s *PGStore) ListCheckinLogs(ctx context.Context, userID string, from, to time.Time) ([]CheckinLog, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(goal, ''), COALESCE(value, '')
		 FROM "CheckinLog"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []CheckinLog{}
	for rows.Next() {
		var item CheckinLog
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Goal, &item.Value); err != nil {
			return nil, err
		}
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

func (s *PGStore) ListLabResults(ctx context.Context, userID string, from, to time.Time) ([]LabResult, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "collectedAt", COALESCE("localDate", ''), COALESCE(name, ''), COALESCE(value, 0), COALESCE(unit, '')
		 FROM "LabResult"
		 WHERE "userId" = $1 AND "collectedAt" >= $2 AND "collectedAt" < $3
		 ORDER BY "collectedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []LabResult{}
	for rows.Next() {
		var item LabResult
		if err := rows.Scan(&item.ID, &item.CollectedAt, &item.LocalDate, &item.Name, &item.Value, &item.Unit); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (s *PGStore) ListChatMessages(ctx context.Context, userID string, from, to time.Time) ([]ChatMessage, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "sentAt", COALESCE("localDate", ''), COALESCE(role, ''), COALESCE(content, '')
		 FROM "ChatMessage"
		 WHERE "userId" = $1 AND "sentAt" >= $2 AND "sentAt" < $3
		 ORDER BY "sentAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var item ChatMessage
		if err := rows.Scan(&item.ID, &item.SentAt, &item.LocalDate, &item.Role, &item.Content); err != nil {
			return nil, err
		}
		messages = append(messages, item)
	}
	return messages, rows.Err()
}

func (s *PGStore) ListJournalEntries(ctx context.Context, userID string, from, to time.Time) ([]JournalEntry, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, "loggedAt", COALESCE("localDate", ''), COALESCE(text, ''), COALESCE(tags, '{}'::text[])
		 FROM "JournalEntry"
		 WHERE "userId" = $1 AND "loggedAt" >= $2 AND "loggedAt" < $3
		 ORDER BY "loggedAt" ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var item JournalEntry
		if err := rows.Scan(&item.ID, &item.LoggedAt, &item.LocalDate, &item.Text, &item.Tags); err != nil {
			return nil, err
		}
		entries = append(entries, item)
	}
	return entries, rows.Err()
}
