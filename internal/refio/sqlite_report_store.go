package refio

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// SQLiteCheckpointStore archives completed JobReports for later inspection.
// It is an optional side-channel a caller may wire into a runner; it is
// not part of the engine's read/write/restart path and carries no
// restart-from-offset semantics.
type SQLiteCheckpointStore struct {
	Path string

	db *sql.DB
}

// NewSQLiteCheckpointStore builds a store backed by the SQLite file at path.
func NewSQLiteCheckpointStore(path string) *SQLiteCheckpointStore {
	return &SQLiteCheckpointStore{Path: path}
}

// Open opens the database, enables WAL mode, and creates the reports table
// if it doesn't already exist.
func (s *SQLiteCheckpointStore) Open() error {
	db, err := sql.Open("sqlite3", s.Path)
	if err != nil {
		return fmt.Errorf("sqlite report store: open %s: %w", s.Path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("sqlite report store: enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS job_reports (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		job_name      TEXT NOT NULL,
		status        TEXT NOT NULL,
		read_count    INTEGER NOT NULL,
		write_count   INTEGER NOT NULL,
		filter_count  INTEGER NOT NULL,
		error_count   INTEGER NOT NULL,
		last_error    TEXT,
		recorded_at   TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("sqlite report store: init schema: %w", err)
	}

	s.db = db
	return nil
}

// SaveReport archives one completed run's JobReport.
func (s *SQLiteCheckpointStore) SaveReport(report *batch.JobReport) error {
	var lastErr sql.NullString
	if report.LastError != nil {
		lastErr = sql.NullString{String: report.LastError.Error(), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO job_reports
		 (job_name, status, read_count, write_count, filter_count, error_count, last_error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.JobName, report.Status.String(),
		report.Metrics.ReadCount, report.Metrics.WriteCount, report.Metrics.FilterCount, report.Metrics.ErrorCount,
		lastErr, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite report store: save report for %s: %w", report.JobName, err)
	}
	return nil
}

// ArchivedReport is one row read back from the archive. It carries the
// counters and status of a past run, not a live *batch.JobReport (the
// original Parameters and SystemProperties are not archived).
type ArchivedReport struct {
	JobName     string
	Status      batch.JobStatus
	ReadCount   int64
	WriteCount  int64
	FilterCount int64
	ErrorCount  int64
	LastError   string
	RecordedAt  time.Time
}

// ListReports returns every archived report for jobName, most recent first.
func (s *SQLiteCheckpointStore) ListReports(jobName string) ([]ArchivedReport, error) {
	rows, err := s.db.Query(
		`SELECT status, read_count, write_count, filter_count, error_count, last_error, recorded_at
		 FROM job_reports WHERE job_name = ? ORDER BY recorded_at DESC`,
		jobName,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite report store: list reports for %s: %w", jobName, err)
	}
	defer rows.Close()

	var out []ArchivedReport
	for rows.Next() {
		var r ArchivedReport
		var status string
		var lastErr sql.NullString
		if err := rows.Scan(&status, &r.ReadCount, &r.WriteCount, &r.FilterCount, &r.ErrorCount, &lastErr, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("sqlite report store: scan row: %w", err)
		}
		r.JobName = jobName
		r.Status = batch.JobStatus(status)
		if lastErr.Valid {
			r.LastError = lastErr.String
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (s *SQLiteCheckpointStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
