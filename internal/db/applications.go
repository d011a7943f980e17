package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/easyapply/internal/types"
)

// LedgerBackend records apply attempts in the applications table
type LedgerBackend struct {
	db    *DB
	runID uuid.UUID
}

// Ledger returns a ledger backend tagging rows with runID (uuid.Nil for none)
func (db *DB) Ledger(runID uuid.UUID) *LedgerBackend {
	return &LedgerBackend{db: db, runID: runID}
}

// Append inserts one apply attempt
func (b *LedgerBackend) Append(ctx context.Context, rec types.AppliedJobRecord) error {
	var runID *uuid.UUID
	if b.runID != uuid.Nil {
		runID = &b.runID
	}
	_, err := b.db.pool.Exec(ctx,
		`INSERT INTO applications (run_id, applied_at, job_id, job_title, company, attempted, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runID, rec.Timestamp, rec.JobID, rec.JobTitle, rec.Company, rec.Attempted, rec.Result,
	)
	if err != nil {
		return fmt.Errorf("failed to record application %s: %w", rec.JobID, err)
	}
	return nil
}

// Since returns attempts newer than cutoff, oldest first
func (b *LedgerBackend) Since(ctx context.Context, cutoff time.Time) ([]types.AppliedJobRecord, error) {
	rows, err := b.db.pool.Query(ctx,
		`SELECT applied_at, job_id, job_title, company, attempted, result
		 FROM applications WHERE applied_at > $1 ORDER BY applied_at, id`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var recs []types.AppliedJobRecord
	for rows.Next() {
		var r types.AppliedJobRecord
		if err := rows.Scan(&r.Timestamp, &r.JobID, &r.JobTitle, &r.Company, &r.Attempted, &r.Result); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
