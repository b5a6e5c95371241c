package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"mazecore/pkg/domain"
)

// SQLiteStore archives schedule runs in a single SQLite table. Each run is
// stored as one JSON payload row keyed by run ID; the creation timestamp is
// duplicated into its own column so listings can be ordered in SQL.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ domain.ScheduleStore = (*SQLiteStore)(nil)

// NewSQLite opens (creating if needed) a SQLite-backed run archive at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "mazecore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// SaveRun inserts the run; the primary key rejects duplicate IDs.
func (s *SQLiteStore) SaveRun(ctx context.Context, run domain.ScheduleRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id required")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, created_at, payload) VALUES(?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), payload,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads and decodes a single run payload.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (domain.ScheduleRun, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScheduleRun{}, false, nil
	}
	if err != nil {
		return domain.ScheduleRun{}, false, fmt.Errorf("select run %s: %w", id, err)
	}
	var run domain.ScheduleRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return domain.ScheduleRun{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

// ListRuns returns all archived runs ordered by creation time, then ID.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]domain.ScheduleRun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var runs []domain.ScheduleRun
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var run domain.ScheduleRun
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }
