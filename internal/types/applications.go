//nolint:revive // types is a standard Go package name pattern
package types

import (
	"sort"
	"strings"
	"time"
)

// LedgerTimeLayout is the timestamp format used in the application ledger.
const LedgerTimeLayout = "2006-01-02 15:04:05"

// AppliedJobRecord is one ledger row describing a single apply attempt.
type AppliedJobRecord struct {
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id"`
	JobTitle  string    `json:"job_title"`
	Company   string    `json:"company"`
	Attempted bool      `json:"attempted"` // An apply button was found
	Result    bool      `json:"result"`    // The application was submitted
}

// CandidateStatus tracks a job card through one visit of a search results page.
type CandidateStatus string

const (
	// StatusToBeProcessed marks a card queued for an apply attempt
	StatusToBeProcessed CandidateStatus = "to-be-processed"
	// StatusApplied marks a card whose application was submitted
	StatusApplied CandidateStatus = "applied"
	// StatusFailed marks a card whose attempt did not submit
	StatusFailed CandidateStatus = "failed"
)

// Terminal reports whether the status is a final outcome.
func (s CandidateStatus) Terminal() bool {
	return s == StatusApplied || s == StatusFailed
}

// JobCandidate is a job card discovered on a search results page.
type JobCandidate struct {
	JobID       string          `json:"job_id"`
	DisplayText string          `json:"display_text"`
	Status      CandidateStatus `json:"status"`
}

// ExperienceLevel is the platform's numeric seniority filter code.
type ExperienceLevel int

var experienceLevelNames = map[ExperienceLevel]string{
	1: "Entry level",
	2: "Associate",
	3: "Mid-Senior level",
	4: "Director",
	5: "Executive",
	6: "Internship",
}

// String returns the display name for the level, or "" when the code is unknown.
func (l ExperienceLevel) String() string {
	return experienceLevelNames[l]
}

// Valid reports whether the code is one the platform understands.
func (l ExperienceLevel) Valid() bool {
	_, ok := experienceLevelNames[l]
	return ok
}

// DescribeLevels renders a human readable list of the given levels in ascending order.
func DescribeLevels(levels []ExperienceLevel) string {
	if len(levels) == 0 {
		return "all experience levels"
	}
	sorted := append([]ExperienceLevel(nil), levels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	names := make([]string, 0, len(sorted))
	for _, l := range sorted {
		if name := l.String(); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
