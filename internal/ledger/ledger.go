// Package ledger records one row per apply attempt and rebuilds the set of recently
// applied jobs from it.
package ledger

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/easyapply/internal/types"
)

// DefaultWindow is how far back recent attempts suppress a job.
const DefaultWindow = 48 * time.Hour

// Store persists apply attempts.
type Store interface {
	Append(ctx context.Context, rec types.AppliedJobRecord) error
	// Since returns records with a timestamp strictly after cutoff, oldest first
	Since(ctx context.Context, cutoff time.Time) ([]types.AppliedJobRecord, error)
}

// Recent returns the IDs of jobs attempted within window before now.
func Recent(ctx context.Context, s Store, now time.Time, window time.Duration) (map[string]struct{}, error) {
	recs, err := s.Since(ctx, now.Add(-window))
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		ids[r.JobID] = struct{}{}
	}
	return ids, nil
}

var (
	counterPrefix = regexp.MustCompile(`^\(\d+\)\s*`)
	firstWord     = regexp.MustCompile(`\w.*`)
)

// ParseTitle splits a job page title of the form "(3) Engineer | Acme | Site" into the
// job title and company name.
func ParseTitle(title string) (job, company string) {
	parts := strings.Split(title, " | ")
	job = counterPrefix.ReplaceAllString(strings.TrimSpace(parts[0]), "")
	job = firstWord.FindString(job)
	if len(parts) > 1 {
		company = firstWord.FindString(parts[1])
	}
	return strings.TrimSpace(job), strings.TrimSpace(company)
}
