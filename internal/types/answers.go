// Package types provides type definitions for structured data used throughout the easyapply system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// AnswerEntry is one cached question/answer pair
type AnswerEntry struct {
	Question string `json:"question"` // Normalized (trimmed, lowercase) label text
	Answer   string `json:"answer"`
}

// NormalizeQuestion trims and lowercases a field label so it can be used as an answer key.
func NormalizeQuestion(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// AnswerRule pairs a question pattern with an answer template.
// Pattern is a regular expression searched in the normalized question; Answer may
// reference profile values as {{.Name}} placeholders.
type AnswerRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Answer  string `yaml:"answer" json:"answer"`
}
