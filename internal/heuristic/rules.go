package heuristic

import "github.com/jonathan/easyapply/internal/types"

// DefaultRules is the rule table used when the configuration supplies none.
// Order matters: specific topics come before the generic yes/no phrasing, and
// sponsorship comes before experience so "visa sponsorship experience" answers No.
func DefaultRules() []types.AnswerRule {
	return []types.AnswerRule{
		{Pattern: `sponsor|visa`, Answer: "No"},
		{Pattern: `experience|years`, Answer: "{{.YearsExperience}}"},
		{Pattern: `salary|compensation|pay`, Answer: "{{.Salary}}"},
		{Pattern: `rate|hourly`, Answer: "{{.Rate}}"},
		{Pattern: `uk citizen|us citizen|authorized|legal|right to work`, Answer: "Yes"},
		{Pattern: `gender`, Answer: "Prefer not to say"},
		{Pattern: `race|lgbtq|ethnicity|nationality|veteran|diversity|disability`, Answer: "Prefer not to say"},
		{Pattern: `govt|government|clearance`, Answer: "No"},
		{Pattern: `phone|mobile|contact`, Answer: "{{.Phone}}"},
		{Pattern: `first name`, Answer: "{{.FirstName}}"},
		{Pattern: `last name`, Answer: "{{.LastName}}"},
		{Pattern: `linkedin`, Answer: "{{.LinkedIn}}"},
		{Pattern: `full name|name`, Answer: "{{.FullName}}"},
		{Pattern: `notice period|notice`, Answer: "{{.NoticePeriod}}"},
		{Pattern: `remote|work from home`, Answer: "Yes"},
		{Pattern: `website|portfolio|github`, Answer: "{{.Website}}"},
		{Pattern: `commute|relocate|travel`, Answer: "Yes"},
		{Pattern: `education|degree|qualification`, Answer: "{{.Education}}"},
		{Pattern: `python|javascript|react|node|golang`, Answer: "Yes"},
		{Pattern: `language|english`, Answer: "Fluent"},
		{Pattern: `do you|have you|can you|are you|willing|available|eligible|able to`, Answer: "Yes"},
	}
}
