package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRun creates a new run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, positions, locations []string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO apply_runs (id, status, positions, locations)
		 VALUES ($1, $2, $3, $4)`,
		id, RunStatusRunning, positions, locations,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished and stores its totals
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, counts RunCounts) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE apply_runs
		 SET status = $1, attempted = $2, applied = $3, failed = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, counts.Attempted, counts.Applied, counts.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil when it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, status, positions, locations, attempted, applied, failed, created_at, completed_at
		 FROM apply_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Status, &run.Positions, &run.Locations,
		&run.Attempted, &run.Applied, &run.Failed, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, status, positions, locations, attempted, applied, failed, created_at, completed_at
		 FROM apply_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Status, &run.Positions, &run.Locations,
			&run.Attempted, &run.Applied, &run.Failed, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
