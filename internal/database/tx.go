package database

import (
	"database/sql"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const maxTxAttempts = 3

// ErrConflict marks a write whose preconditions changed between the
// transaction's read and its write. RunInTx retries it like a
// serialization failure so the next attempt re-reads committed state.
var ErrConflict = errors.New("transaction conflict")

// RunInTx executes fn inside a serializable transaction and retries it
// when the commit loses a conflict race, so callers never see a transient
// serialization failure. fn must not produce side effects outside the
// transaction.
func RunInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil || !isRetryable(err) {
			return err
		}
		log.Printf("Transaction conflict (attempt %d/%d), retrying: %v", attempt, maxTxAttempts, err)
	}
	return err
}

// 40001 serialization_failure, 40P01 deadlock_detected
func isRetryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
