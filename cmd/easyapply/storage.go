package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jonathan/easyapply/internal/answers"
	"github.com/jonathan/easyapply/internal/config"
	"github.com/jonathan/easyapply/internal/db"
	"github.com/jonathan/easyapply/internal/jobs"
	"github.com/jonathan/easyapply/internal/ledger"
)

// storage bundles the answer and ledger backends chosen by the config.
type storage struct {
	answers answers.Backend
	ledger  ledger.Store
	db      *db.DB
	runID   uuid.UUID
}

// openStorage connects the configured backend. With track set and a database
// backend, a run record is created and ledger rows are tagged with it.
func openStorage(ctx context.Context, cfg *config.Config, track bool, logger *slog.Logger) (*storage, error) {
	s := &storage{runID: uuid.New()}

	if cfg.Storage.Backend != config.BackendPostgres {
		s.answers = answers.NewCSVFile(cfg.Answers.File)
		s.ledger = ledger.NewCSVFile(cfg.OutputFilename, logger)
		return s, nil
	}

	database, err := db.Connect(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	s.db = database

	if track {
		id, err := database.CreateRun(ctx, cfg.Positions, cfg.Locations)
		if err != nil {
			database.Close()
			return nil, err
		}
		s.runID = id
	}
	s.answers = database.Answers()
	s.ledger = database.Ledger(s.runID)
	return s, nil
}

// finish stores the run totals when a database backs the run.
func (s *storage) finish(ctx context.Context, stats jobs.Stats, runErr error) error {
	if s.db == nil {
		return nil
	}
	status := db.RunStatusCompleted
	if runErr != nil {
		status = db.RunStatusFailed
	}
	err := s.db.CompleteRun(ctx, s.runID, status, db.RunCounts{
		Attempted: stats.Attempted,
		Applied:   stats.Applied,
		Failed:    stats.Failed,
	})
	if err != nil {
		return fmt.Errorf("failed to record run totals: %w", err)
	}
	return nil
}

func (s *storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
