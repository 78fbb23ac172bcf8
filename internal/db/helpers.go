package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// QueryRower is satisfied by *sql.DB and *sql.Tx.
type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullIfZero stores 0 ids as NULL.
func NullIfZero(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// IsForeignKeyViolation reports a delete of a referenced row or an insert
// pointing at a missing parent.
func IsForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == mysqlRowIsReferenced || me.Number == mysqlNoReferencedRow)
}

// IsRetryable reports deadlocks and lock wait timeouts.
func IsRetryable(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout)
}

// WithTx runs fn in a transaction, committing on nil error.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// WithTxRetry retries fn once when MySQL reports a deadlock.
func WithTxRetry(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	err := WithTx(ctx, db, fn)
	if err != nil && IsRetryable(err) {
		err = WithTx(ctx, db, fn)
	}
	return err
}

// AcquireNamedLock takes a MySQL named lock (GET_LOCK) for the tx's connection.
func AcquireNamedLock(ctx context.Context, tx *sql.Tx, key string, timeoutSec int) error {
	if tx == nil || key == "" {
		return errors.New("acquire named lock: invalid args")
	}
	var got sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, key, timeoutSec).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return fmt.Errorf("cannot acquire lock %q", key)
	}
	return nil
}

func ReleaseNamedLock(ctx context.Context, tx *sql.Tx, key string) {
	if tx == nil || key == "" {
		return
	}
	_, _ = tx.ExecContext(ctx, `SELECT RELEASE_LOCK(?)`, key)
}
