// Package llm asks a Gemini model to suggest answers for form questions the rule
// table cannot answer.
package llm

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the model settings.
type Config struct {
	Model       string
	Temperature float32
	// MaxAnswerLength rejects suggestions longer than this many characters
	MaxAnswerLength int
}

// DefaultConfig returns the settings used for answer suggestions.
func DefaultConfig() *Config {
	return &Config{
		Model:           DefaultModel,
		Temperature:     0.1,
		MaxAnswerLength: 200,
	}
}

// WithModel returns a copy of c using model, or c's model when model is empty.
func (c *Config) WithModel(model string) *Config {
	next := *c
	if model != "" {
		next.Model = model
	}
	return &next
}
