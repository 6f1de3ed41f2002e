package refio

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// MySQLWriter is a reference Writer[T] inserting each record as one row,
// all rows of a batch inside a single transaction: a failure partway
// through rolls the whole batch back, so the batch is either fully written
// or not written at all (no partial batch failures for the engine to
// partially scan around).
type MySQLWriter[T any] struct {
	DSN   string
	Query string
	Args  func(T) []interface{}

	db *sql.DB
}

// NewMySQLWriter builds a MySQLWriter executing query once per record,
// with args extracting query parameters from the record's payload.
func NewMySQLWriter[T any](dsn, query string, args func(T) []interface{}) *MySQLWriter[T] {
	return &MySQLWriter[T]{DSN: dsn, Query: query, Args: args}
}

// Open opens the connection pool and verifies connectivity.
func (w *MySQLWriter[T]) Open(ctx context.Context) error {
	db, err := sql.Open("mysql", w.DSN)
	if err != nil {
		return fmt.Errorf("mysql writer: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("mysql writer: ping: %w", err)
	}
	w.db = db
	return nil
}

// WriteRecords inserts every record of b inside one transaction.
func (w *MySQLWriter[T]) WriteRecords(ctx context.Context, b batch.Batch[T]) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql writer: begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, w.Query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("mysql writer: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range b.Records() {
		if _, err := stmt.ExecContext(ctx, w.Args(rec.Payload)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("mysql writer: insert record %d: %w", rec.Header.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql writer: commit: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (w *MySQLWriter[T]) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
