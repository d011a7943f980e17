package db

import (
	"context"
	"fmt"

	"github.com/jonathan/easyapply/internal/types"
)

// AnswerBackend stores the question-answer cache in the answers table
type AnswerBackend struct {
	db *DB
}

// Answers returns an answer backend on this database
func (db *DB) Answers() *AnswerBackend {
	return &AnswerBackend{db: db}
}

// LoadAll returns every stored answer in insertion order
func (b *AnswerBackend) LoadAll(ctx context.Context) ([]types.AnswerEntry, error) {
	rows, err := b.db.pool.Query(ctx,
		`SELECT question, answer FROM answers ORDER BY created_at, question`)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	defer rows.Close()

	var entries []types.AnswerEntry
	for rows.Next() {
		var e types.AnswerEntry
		if err := rows.Scan(&e.Question, &e.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ensure creates the schema
func (b *AnswerBackend) Ensure(ctx context.Context) error {
	return b.db.EnsureSchema(ctx)
}

// Append inserts an answer; an existing question keeps its first answer
func (b *AnswerBackend) Append(ctx context.Context, entry types.AnswerEntry) error {
	_, err := b.db.pool.Exec(ctx,
		`INSERT INTO answers (question, answer) VALUES ($1, $2)
		 ON CONFLICT (question) DO NOTHING`,
		entry.Question, entry.Answer,
	)
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}
