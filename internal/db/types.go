package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one apply command invocation
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Positions   []string   `json:"positions"`
	Locations   []string   `json:"locations"`
	Attempted   int        `json:"attempted"`
	Applied     int        `json:"applied"`
	Failed      int        `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunCounts are the totals stored when a run completes
type RunCounts struct {
	Attempted int
	Applied   int
	Failed    int
}
