package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/easyapply/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
username: user@example.com
password: hunter2
phone_number: "5550100"
salary: "90000"
rate: "45"
positions:
  - Software Engineer
  -
  - Backend Engineer
locations:
  - Remote
experience_level: [2, 3]
blacklist: [Crossover]
blacklist_titles: [Principal]
uploads:
  resume: resume.pdf
profile:
  first_name: Ada
  last_name: Lovelace
answers:
  fallback: defer
  default_answer: "Yes"
  rules:
    - pattern: "visa"
      answer: "No"
search:
  max_search_time: 2h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, validYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "user@example.com", cfg.Username)
	assert.Equal(t, "90000", cfg.Salary)
	assert.Equal(t, []string{"Software Engineer", "Backend Engineer"}, cfg.Positions)
	assert.Equal(t, []types.ExperienceLevel{2, 3}, cfg.ExperienceLevel)
	assert.Equal(t, 2*time.Hour, cfg.Search.MaxSearchTime)
	assert.Equal(t, FallbackDefer, cfg.Answers.Fallback)
	assert.Equal(t, []types.AnswerRule{{Pattern: "visa", Answer: "No"}}, cfg.Answers.Rules)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "resume.pdf"), cfg.Uploads.Resume)
	assert.True(t, filepath.IsAbs(cfg.Uploads.Resume))
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("username: u\npassword: p\n"))
	require.NoError(t, err)

	assert.Equal(t, "output.csv", cfg.OutputFilename)
	assert.Equal(t, "qa.csv", cfg.Answers.File)
	assert.Equal(t, FallbackPrompt, cfg.Answers.Fallback)
	assert.Equal(t, 25, cfg.Search.PageSize)
	assert.Equal(t, 500, cfg.Search.MaxCombos)
	assert.Equal(t, time.Hour, cfg.Search.MaxSearchTime)
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, "https://www.linkedin.com", cfg.Browser.BaseURL)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "positions: [unterminated")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestParse_UploadsAsList(t *testing.T) {
	_, err := Parse([]byte("uploads:\n  - resume: a.pdf\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}

func TestValidate_Valid(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF"), 0644))

	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	cfg.Uploads.Resume = resume

	assert.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	base, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	base.Uploads = Uploads{}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing password", func(c *Config) { c.Password = "" }, "Password"},
		{"missing phone", func(c *Config) { c.PhoneNumber = "" }, "PhoneNumber"},
		{"no positions", func(c *Config) { c.Positions = nil }, "Positions"},
		{"no locations", func(c *Config) { c.Locations = []string{} }, "Locations"},
		{"bad level", func(c *Config) { c.ExperienceLevel = []types.ExperienceLevel{9} }, "ExperienceLevel"},
		{"bad fallback", func(c *Config) { c.Answers.Fallback = "guess" }, "Fallback"},
		{"postgres without url", func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Storage.DatabaseURL = ""
		}, "database_url"},
		{"llm without key", func(c *Config) { c.Answers.Fallback = FallbackLLM }, "api_key"},
		{"invalid rule", func(c *Config) { c.Answers.Rules = []types.AnswerRule{{Pattern: "", Answer: "x"}} }, "invalid answer rules"},
		{"missing upload", func(c *Config) { c.Uploads.Resume = "/nonexistent/resume.pdf" }, "upload file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.Clone()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClone_DoesNotShareSlices(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	clone := cfg.Clone()
	clone.Positions[0] = "changed"
	clone.Answers.Rules[0].Answer = "changed"

	assert.Equal(t, "Software Engineer", cfg.Positions[0])
	assert.Equal(t, "No", cfg.Answers.Rules[0].Answer)
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	env := map[string]string{
		EnvPassword:    "from-env",
		EnvAPIKey:      "key-123",
		EnvDatabaseURL: "",
	}
	out := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "from-env", out.Password)
	assert.Equal(t, "user@example.com", out.Username)
	assert.Equal(t, "key-123", out.LLM.APIKey)
	assert.Equal(t, "", out.Storage.DatabaseURL)
	assert.Equal(t, "hunter2", cfg.Password, "original must be untouched")
}

func TestTemplateVars(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	vars := cfg.TemplateVars()
	assert.Equal(t, "90000", vars["Salary"])
	assert.Equal(t, "5550100", vars["Phone"])
	assert.Equal(t, "Ada Lovelace", vars["FullName"])
}

func TestRedacted(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	r := cfg.Redacted()
	assert.Equal(t, "****", r.Password)
	assert.Equal(t, "****", r.Username)
	assert.Equal(t, "hunter2", cfg.Password)
}
