package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Mutations run at serializable isolation: authorization reads, position
// shifts, the entity write and the audit append commit together or not at
// all. Postgres may abort one of two overlapping serializable transactions,
// so contended transactions are retried a bounded number of times.
const maxTxAttempts = 3

// WithSerializableTx runs fn inside a serializable transaction, retrying on
// serialization failures and deadlocks. Any error from fn rolls the whole
// transaction back; rollback is the only recovery, there are no
// compensating writes.
func WithSerializableTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	var err error

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = runTx(ctx, db, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		slog.WarnContext(ctx, "Serialization conflict, retrying transaction",
			slog.Int("attempt", attempt), slog.Any("error", err))
	}

	return err
}

func runTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	// serialization_failure, deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
