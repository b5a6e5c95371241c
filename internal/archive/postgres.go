package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"mazecore/pkg/domain"
)

const (
	postgresDriver = "pgx"
	// defaultPostgresDSN matches the Open defaults; override via env or DSN argument.
	defaultPostgresDSN = "postgres://localhost/mazecore?sslmode=disable"
)

// PostgresStore archives schedule runs in a Postgres table with JSONB
// payloads. Shape mirrors the SQLite backend.
type PostgresStore struct {
	db *sql.DB
}

var _ domain.ScheduleStore = (*PostgresStore)(nil)

// NewPostgres opens a Postgres-backed run archive, pinging the server and
// ensuring the runs table exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure runs table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// SaveRun inserts the run; the primary key rejects duplicate IDs.
func (s *PostgresStore) SaveRun(ctx context.Context, run domain.ScheduleRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id required")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, created_at, payload) VALUES($1, $2, $3)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), payload,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads and decodes a single run payload.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (domain.ScheduleRun, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = $1`, id).Scan(&payload)
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
func (s *PostgresStore) ListRuns(ctx context.Context) ([]domain.ScheduleRun, error) {
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
func (s *PostgresStore) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *PostgresStore) DB() *sql.DB { return s.db }
