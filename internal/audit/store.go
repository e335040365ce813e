// Package audit persists the append-only evaluation history. Every
// evaluation produces one record holding the request, the response, and
// the headline facts used for filtering.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"promise-console/internal/models"
)

var ErrNotFound = errors.New("audit record not found")

// Record is one audited evaluation.
type Record struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Customer    string                 `json:"customer"`
	ItemCount   int                    `json:"itemCount"`
	Confidence  models.Confidence      `json:"confidence"`
	PromiseDate string                 `json:"promiseDate,omitempty"`
	OnTime      *bool                  `json:"onTime"`
	Request     models.PromiseRequest  `json:"request"`
	Response    models.PromiseResponse `json:"response"`
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	From       time.Time
	To         time.Time
	Confidence models.Confidence
	// OnTime filters by delivery outcome: "on-time" or "late".
	OnTime string
}

// Store is a SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id            TEXT PRIMARY KEY,
	timestamp     TEXT NOT NULL,
	customer      TEXT NOT NULL DEFAULT '',
	item_count    INTEGER NOT NULL DEFAULT 0,
	confidence    TEXT NOT NULL DEFAULT '',
	promise_date  TEXT,
	on_time       INTEGER,
	request_json  TEXT NOT NULL,
	response_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_records(timestamp);
`

// Open opens (creating if needed) the audit database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts a record, assigning an id and timestamp when missing,
// and returns the stored record.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	requestJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return Record{}, fmt.Errorf("marshal audit request: %w", err)
	}
	responseJSON, err := json.Marshal(rec.Response)
	if err != nil {
		return Record{}, fmt.Errorf("marshal audit response: %w", err)
	}

	var onTime any
	if rec.OnTime != nil {
		onTime = boolToInt(*rec.OnTime)
	}
	var promiseDate any
	if rec.PromiseDate != "" {
		promiseDate = rec.PromiseDate
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO audit_records(id, timestamp, customer, item_count, confidence, promise_date, on_time, request_json, response_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ID, rec.Timestamp.Format(time.RFC3339Nano), rec.Customer, rec.ItemCount,
		string(rec.Confidence), promiseDate, onTime, string(requestJSON), string(responseJSON))
	if err != nil {
		return Record{}, fmt.Errorf("insert audit record: %w", err)
	}

	slog.Debug("Audit record appended", "id", rec.ID, "customer", rec.Customer)
	return rec, nil
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, timestamp, customer, item_count, confidence, promise_date, on_time, request_json, response_json
FROM audit_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns matching records newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
SELECT id, timestamp, customer, item_count, confidence, promise_date, on_time, request_json, response_json
FROM audit_records WHERE 1=1`
	args := []any{}

	if !filter.From.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.From.UTC().Format(time.RFC3339Nano))
	}
	if !filter.To.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.To.UTC().Format(time.RFC3339Nano))
	}
	if filter.Confidence != "" {
		query += " AND confidence = ?"
		args = append(args, string(filter.Confidence))
	}
	switch filter.OnTime {
	case "on-time":
		query += " AND on_time = 1"
	case "late":
		query += " AND on_time = 0"
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_records`); err != nil {
		return fmt.Errorf("clear audit records: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec          Record
		timestamp    string
		promiseDate  sql.NullString
		onTime       sql.NullInt64
		requestJSON  string
		responseJSON string
		confidence   string
	)
	err := row.Scan(&rec.ID, &timestamp, &rec.Customer, &rec.ItemCount, &confidence,
		&promiseDate, &onTime, &requestJSON, &responseJSON)
	if err != nil {
		return Record{}, err
	}

	rec.Confidence = models.Confidence(confidence)
	rec.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	if promiseDate.Valid {
		rec.PromiseDate = promiseDate.String
	}
	if onTime.Valid {
		v := onTime.Int64 == 1
		rec.OnTime = &v
	}
	if err := json.Unmarshal([]byte(requestJSON), &rec.Request); err != nil {
		return Record{}, fmt.Errorf("decode audit request: %w", err)
	}
	if err := json.Unmarshal([]byte(responseJSON), &rec.Response); err != nil {
		return Record{}, fmt.Errorf("decode audit response: %w", err)
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
