// Package jobs searches job listings, filters the cards of each results page and
// drives one apply attempt per remaining job.
package jobs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/easyapply/internal/types"
)

// AppliedMarker is shown on cards of jobs the account already applied to.
const AppliedMarker = "Applied"

// SearchURL builds the Easy Apply search page URL for one results offset.
func SearchURL(base, position, location string, start int, levels []types.ExperienceLevel) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString("/jobs/search/?f_LF=f_AL&keywords=")
	b.WriteString(url.QueryEscape(position))
	b.WriteString("&location=")
	b.WriteString(url.QueryEscape(location))
	b.WriteString("&start=")
	b.WriteString(strconv.Itoa(start))
	if len(levels) > 0 {
		codes := make([]string, len(levels))
		for i, l := range levels {
			codes[i] = strconv.Itoa(int(l))
		}
		b.WriteString("&f_E=")
		b.WriteString(strings.Join(codes, ","))
	}
	return b.String()
}

// JobURL returns the job detail page URL.
func JobURL(base, jobID string) string {
	return strings.TrimRight(base, "/") + "/jobs/view/" + url.PathEscape(jobID)
}

// ParseCards extracts the job cards of a rendered results page in page order.
func ParseCards(html string) ([]types.JobCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var cards []types.JobCandidate
	doc.Find("div[data-job-id]").Each(func(_ int, s *goquery.Selection) {
		id := strings.TrimSpace(s.AttrOr("data-job-id", ""))
		// the search box carries the attribute too
		if id == "" || id == "search" {
			return
		}
		cards = append(cards, types.JobCandidate{
			JobID:       id,
			DisplayText: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	return cards, nil
}

// Filter drops already applied, blacklisted and recently attempted cards and queues the
// rest, keeping page order and the first card of each job ID.
func Filter(cards []types.JobCandidate, blacklist []string, recent map[string]struct{}) []types.JobCandidate {
	seen := make(map[string]bool, len(cards))
	out := make([]types.JobCandidate, 0, len(cards))
	for _, c := range cards {
		if seen[c.JobID] {
			continue
		}
		seen[c.JobID] = true

		if strings.Contains(c.DisplayText, AppliedMarker) || containsAny(c.DisplayText, blacklist) {
			continue
		}
		if _, ok := recent[c.JobID]; ok {
			continue
		}
		c.Status = types.StatusToBeProcessed
		out = append(out, c)
	}
	return out
}

// containsAny reports whether s contains any non-empty term.
func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
