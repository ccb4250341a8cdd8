// Package history journals creation outcomes in a local SQLite
// database, so past submissions survive across sessions. A file lock
// next to the database keeps concurrent sessions from interleaving
// writes.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"dubdeck/internal/config"
)

// Outcome values recorded per attempt.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Record is one finished creation attempt.
type Record struct {
	ID              int64
	ProjectID       string
	Title           string
	SourceType      string
	SourceRef       string
	TargetLanguages []string
	Outcome         string
	Detail          string
	CreatedAt       time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the history database. The session
// lock is acquired first; a second concurrent session fails fast
// instead of sharing the journal.
func Open(cfg *config.Config) (*Store, error) {
	dir := cfg.History.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "history.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another session holds the history lock at %s", lock.Path())
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the session lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && dbErr == nil {
			dbErr = fmt.Errorf("release session lock: %w", err)
		}
	}
	return dbErr
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS creation_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL,
    source_type TEXT NOT NULL,
    source_ref TEXT NOT NULL DEFAULT '',
    target_languages TEXT NOT NULL DEFAULT '[]',
    outcome TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_creation_history_created_at
    ON creation_history(created_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Append records one finished attempt and returns its row id.
func (s *Store) Append(ctx context.Context, rec Record) (int64, error) {
	targets, err := json.Marshal(rec.TargetLanguages)
	if err != nil {
		return 0, fmt.Errorf("marshal target languages: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := sq.Insert("creation_history").
		Columns("project_id", "title", "source_type", "source_ref",
			"target_languages", "outcome", "detail", "created_at").
		Values(rec.ProjectID, rec.Title, rec.SourceType, rec.SourceRef,
			string(targets), rec.Outcome, rec.Detail,
			createdAt.Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert history record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := sq.Select("id", "project_id", "title", "source_type",
		"source_ref", "target_languages", "outcome", "detail", "created_at").
		From("creation_history").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// CountByOutcome returns the number of records with the given outcome.
func (s *Store) CountByOutcome(ctx context.Context, outcome string) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("creation_history").
		Where(sq.Eq{"outcome": outcome}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var targets string
	var createdAt string
	if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Title, &rec.SourceType,
		&rec.SourceRef, &targets, &rec.Outcome, &rec.Detail, &createdAt); err != nil {
		return Record{}, fmt.Errorf("scan history record: %w", err)
	}
	if err := json.Unmarshal([]byte(targets), &rec.TargetLanguages); err != nil {
		return Record{}, fmt.Errorf("decode target languages: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = parsed
	return rec, nil
}
