package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGNotificationQueue writes pending notification rows; a separate delivery
// worker drains them.
type PGNotificationQueue struct {
	pool *pgxpool.Pool
}

func NewPGNotificationQueue(pool *pgxpool.Pool) *PGNotificationQueue {
	return &PGNotificationQueue{pool: pool}
}

func (q *PGNotificationQueue) Enqueue(ctx context.Context, userID, kind, title, body string) error {
	_, err := q.pool.Exec(
		ctx,
		`INSERT INTO "NotificationQueue" (id, "userId", kind, title, body, status, "createdAt")
		 VALUES ($1, $2, $3, $4, $5, 'PENDING', NOW())`,
		uuid.NewString(),
		userID,
		kind,
		title,
		body,
	)
	return err
}
