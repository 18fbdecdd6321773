// Package audit persists guardrail violation records in SQLite so that
// blocked and flagged messages can be reviewed outside the chat flow.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	hrbototel "github.com/pathways-2/Agent-Chatbot/internal/otel"
)

var tracer = hrbototel.Tracer("github.com/pathways-2/Agent-Chatbot/internal/audit")

// Store persists violation records in SQLite.
type Store struct {
	db *sql.DB
}

// Record is one persisted guardrail violation.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Violation string    `json:"violation"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
}

// NewStore opens (or creates) the violation database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS violations (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		violation TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_violations_timestamp ON violations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_violations_violation ON violations(violation);
	`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordViolation persists one violation. Failures are logged and swallowed:
// audit recording must never change the outcome of a chat request.
func (s *Store) RecordViolation(ctx context.Context, violation, severity, message string) {
	ctx, span := tracer.Start(ctx, "audit.record_violation",
		trace.WithAttributes(
			attribute.String("violation", violation),
			attribute.String("severity", severity),
		))
	defer span.End()

	query := `INSERT INTO violations (id, timestamp, violation, severity, message)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(), time.Now().UTC(), violation, severity, message,
	)
	if err != nil {
		log.Error().Err(err).
			Str("violation", violation).
			Msg("audit_record_failed")
	}
}

// List returns violation records within the given window, newest first.
// Zero times leave that bound open; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, from, to time.Time, limit int) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "audit.list")
	defer span.End()

	query := `SELECT id, timestamp, violation, severity, message FROM violations WHERE 1=1`
	args := []interface{}{}

	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, to)
	}

	query += ` ORDER BY timestamp DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying violations: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Violation, &r.Severity, &r.Message); err != nil {
			return nil, fmt.Errorf("scanning violation: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of stored violations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM violations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting violations: %w", err)
	}
	return n, nil
}
