package archive

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const createRunsTableSQL = `
	CREATE TABLE IF NOT EXISTS grid_runs (
		id          TEXT PRIMARY KEY,
		created_at  TIMESTAMP NOT NULL,
		date        TEXT NOT NULL,
		criterion   TEXT NOT NULL,
		step_deg    REAL NOT NULL,
		max_lat     REAL NOT NULL,
		cell_count  INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		points      BLOB NOT NULL
	)
`

// SQLiteStore implements Store on a local SQLite database
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed run archive
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite archive: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite archive: %w", err)
	}

	if _, err := db.ExecContext(ctx, createRunsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create grid_runs table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// SaveRun stores a completed grid run
func (s *SQLiteStore) SaveRun(ctx context.Context, run *GridRun) error {
	query := `
		INSERT INTO grid_runs (id, created_at, date, criterion, step_deg, max_lat, cell_count, duration_ms, points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.CreatedAt, run.Date, run.Criterion,
		run.StepDeg, run.MaxLat, run.CellCount, run.DurationMs, run.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to insert grid run: %w", err)
	}
	return nil
}

// GetRun fetches one archived run by ID, point blob included
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*GridRun, error) {
	query := `
		SELECT id, created_at, date, criterion, step_deg, max_lat, cell_count, duration_ms, points
		FROM grid_runs
		WHERE id = ?
	`
	run := &GridRun{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.CreatedAt, &run.Date, &run.Criterion,
		&run.StepDeg, &run.MaxLat, &run.CellCount, &run.DurationMs, &run.Points,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query grid run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, created_at, date, criterion, step_deg, max_lat, cell_count, duration_ms
		FROM grid_runs
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query grid runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.Date, &run.Criterion,
			&run.StepDeg, &run.MaxLat, &run.CellCount, &run.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grid run row: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
