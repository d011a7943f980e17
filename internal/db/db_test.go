package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/easyapply/internal/answers"
	"github.com/jonathan/easyapply/internal/ledger"
)

var (
	_ answers.Backend = (*AnswerBackend)(nil)
	_ ledger.Store    = (*LedgerBackend)(nil)
)

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range schema {
		assert.Contains(t, stmt, "IF NOT EXISTS", "statement must be safe to re-run: %s", stmt)
	}
}

func TestSchemaTables(t *testing.T) {
	joined := strings.Join(schema, "\n")
	for _, table := range []string{"answers", "apply_runs", "applications"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestRunType(t *testing.T) {
	run := Run{Status: RunStatusRunning, Positions: []string{"Go Developer"}}

	assert.Equal(t, "running", run.Status)
	assert.Equal(t, []string{"Go Developer"}, run.Positions)
	assert.Nil(t, run.CompletedAt)
}
