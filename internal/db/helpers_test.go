package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !IsDuplicateKey(fmt.Errorf("insert: %w", dup)) {
		t.Fatal("wrapped 1062 should be a duplicate key")
	}
	if IsDuplicateKey(errors.New("boom")) {
		t.Fatal("plain error is not a duplicate key")
	}
	if !IsRetryable(&mysql.MySQLError{Number: 1213}) {
		t.Fatal("deadlock should be retryable")
	}
}

func TestWithTxRetryRetriesDeadlockOnce(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err = WithTxRetry(context.Background(), conn, func(tx *sql.Tx) error {
		calls++
		if calls == 1 {
			return &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	for _, table := range Tables {
		rows := sqlmock.NewRows([]string{"table_name"})
		if table != "parcels" {
			rows.AddRow(table)
		}
		mock.ExpectQuery("information_schema\\.tables").WithArgs(table).WillReturnRows(rows)
	}

	missing := MissingTables(context.Background(), conn)
	if len(missing) != 1 || missing[0] != "parcels" {
		t.Fatalf("unexpected missing tables %v", missing)
	}
}
