package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGCreditLedger keeps report billing on the shared user wallet. Charges go
// through a row lock so concurrent report attempts cannot double-spend.
type PGCreditLedger struct {
	pool *pgxpool.Pool
}

func NewPGCreditLedger(pool *pgxpool.Pool) *PGCreditLedger {
	return &PGCreditLedger{pool: pool}
}

func (l *PGCreditLedger) ensureWallet(ctx context.Context, userID string) error {
	_, err := l.pool.Exec(
		ctx,
		`INSERT INTO "UserCreditWallet" (id, "userId", "balanceCredits", "lifetimeGrantedCredits", "lifetimeSpentCredits", "createdAt", "updatedAt")
		 VALUES ($1, $2, 0, 0, 0, NOW(), NOW())
		 ON CONFLICT ("userId") DO NOTHING`,
		uuid.NewString(),
		userID,
	)
	return err
}

func (l *PGCreditLedger) GetBalance(ctx context.Context, userID string) (int, error) {
	if err := l.ensureWallet(ctx, userID); err != nil {
		return 0, err
	}
	var balance int
	err := l.pool.QueryRow(
		ctx,
		`SELECT "balanceCredits" FROM "UserCreditWallet" WHERE "userId" = $1`,
		userID,
	).Scan(&balance)
	return balance, err
}

func (l *PGCreditLedger) Charge(ctx context.Context, userID string, credits int, reason string) (bool, error) {
	if credits <= 0 {
		return true, nil
	}
	if err := l.ensureWallet(ctx, userID); err != nil {
		return false, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var balance int
	err = tx.QueryRow(
		ctx,
		`SELECT "balanceCredits" FROM "UserCreditWallet" WHERE "userId" = $1 FOR UPDATE`,
		userID,
	).Scan(&balance)
	if err != nil {
		return false, err
	}
	if balance < credits {
		return false, nil
	}

	_, err = tx.Exec(
		ctx,
		`UPDATE "UserCreditWallet"
		 SET "balanceCredits" = "balanceCredits" - $2,
		     "lifetimeSpentCredits" = "lifetimeSpentCredits" + $2,
		     "updatedAt" = NOW()
		 WHERE "userId" = $1`,
		userID,
		credits,
	)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO "CreditSpendLedger" (id, "userId", credits, reason, "createdAt")
		 VALUES ($1, $2, $3, $4, NOW())`,
		uuid.NewString(),
		userID,
		credits,
		reason,
	)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
