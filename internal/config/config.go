// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/easyapply/internal/schemas"
	"github.com/jonathan/easyapply/internal/types"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// Unknown-question fallback strategies
const (
	FallbackPrompt = "prompt"
	FallbackStatic = "static"
	FallbackDefer  = "defer"
	FallbackLLM    = "llm"
)

// Config represents the run configuration loaded from a YAML file.
// A loaded Config is treated as read-only; use Clone before changing a copy.
type Config struct {
	// Credentials
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`

	// Applicant
	PhoneNumber string  `yaml:"phone_number" validate:"required"`
	Salary      string  `yaml:"salary"`
	Rate        string  `yaml:"rate"`
	Profile     Profile `yaml:"profile"`
	Uploads     Uploads `yaml:"uploads"`

	// Search
	Positions       []string                `yaml:"positions" validate:"min=1,dive,required"`
	Locations       []string                `yaml:"locations" validate:"min=1,dive,required"`
	ExperienceLevel []types.ExperienceLevel `yaml:"experience_level" validate:"dive,min=1,max=6"`
	Blacklist       []string                `yaml:"blacklist"`
	BlacklistTitles []string                `yaml:"blacklist_titles"`
	Search          Search                  `yaml:"search"`

	// Output
	OutputFilename string `yaml:"output_filename"`
	LogDir         string `yaml:"log_dir"`
	Verbose        bool   `yaml:"verbose"`

	Answers Answers `yaml:"answers"`
	Browser Browser `yaml:"browser"`
	Storage Storage `yaml:"storage"`
	LLM     LLM     `yaml:"llm"`
}

// Profile holds the applicant details referenced by answer templates.
type Profile struct {
	FirstName       string `yaml:"first_name"`
	LastName        string `yaml:"last_name"`
	LinkedIn        string `yaml:"linkedin"`
	Website         string `yaml:"website"`
	YearsExperience string `yaml:"years_experience"`
	NoticePeriod    string `yaml:"notice_period"`
	Education       string `yaml:"education"`
}

// Uploads holds the documents attached during the apply wizard.
type Uploads struct {
	Resume      string `yaml:"resume"`
	CoverLetter string `yaml:"cover_letter"`
}

// Search bounds the job search loop.
type Search struct {
	MaxSearchTime  time.Duration `yaml:"max_search_time" validate:"min=0"`
	PageSize       int           `yaml:"page_size" validate:"min=0"`
	MaxCombos      int           `yaml:"max_combos" validate:"min=0"`
	EmptyPageLimit int           `yaml:"empty_page_limit" validate:"min=0"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" validate:"min=0"`
}

// Answers configures question answering.
type Answers struct {
	File          string             `yaml:"file"`
	Rules         []types.AnswerRule `yaml:"rules"`
	Fallback      string             `yaml:"fallback" validate:"omitempty,oneof=prompt static defer llm"`
	DefaultAnswer string             `yaml:"default_answer"`
	PendingFile   string             `yaml:"pending_file"`
}

// Browser configures the automated browser session.
type Browser struct {
	Headless    bool          `yaml:"headless"`
	UserDataDir string        `yaml:"user_data_dir"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"min=0"`
}

// Storage selects where answers and the application ledger are persisted.
type Storage struct {
	Backend     string `yaml:"backend" validate:"omitempty,oneof=csv postgres"`
	DatabaseURL string `yaml:"database_url"`
}

// LLM configures the model used by the llm fallback.
type LLM struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// Defaults returns the values used for every field a config file leaves unset.
func Defaults() Config {
	return Config{
		OutputFilename: "output.csv",
		LogDir:         "logs",
		Search: Search{
			MaxSearchTime:  time.Hour,
			PageSize:       25,
			MaxCombos:      500,
			EmptyPageLimit: 3,
			AttemptTimeout: 10 * time.Minute,
		},
		Answers: Answers{
			File:        "qa.csv",
			Fallback:    FallbackPrompt,
			PendingFile: "pending_questions.csv",
		},
		Browser: Browser{
			BaseURL: "https://www.linkedin.com",
			Timeout: 30 * time.Second,
		},
		Storage: Storage{Backend: BackendCSV},
		LLM:     LLM{Model: "gemini-2.5-flash"},
	}
}

// LoadConfig loads configuration from a YAML file and fills unset values from Defaults.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Relative upload paths are resolved against the config file's directory
	cfg.Uploads = cfg.Uploads.absolute(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML configuration content.
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := checkUploadsShape(&root); err != nil {
		return nil, err
	}

	var cfg Config
	if err := root.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Blank list entries are dropped rather than rejected
	cfg.Positions = compactStrings(cfg.Positions)
	cfg.Locations = compactStrings(cfg.Locations)
	cfg.Blacklist = compactStrings(cfg.Blacklist)
	cfg.BlacklistTitles = compactStrings(cfg.BlacklistTitles)

	cfg = cfg.MergeWithDefaults(Defaults())
	return &cfg, nil
}

// checkUploadsShape rejects `uploads` written as a YAML list, a common mistake
// when copying the example config (a leading "-" on each line).
func checkUploadsShape(root *yaml.Node) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == "uploads" && mapping.Content[i+1].Kind == yaml.SequenceNode {
			return fmt.Errorf("config error: 'uploads' must be a mapping, not a list; remove the leading '-' from each upload line")
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Credentials are checked here, so environment overrides must be applied first.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Storage.Backend == BackendPostgres && c.Storage.DatabaseURL == "" {
		return fmt.Errorf("config error: 'storage.database_url' is required for the postgres backend")
	}
	if c.Answers.Fallback == FallbackLLM && c.LLM.APIKey == "" {
		return fmt.Errorf("config error: 'llm.api_key' (or GEMINI_API_KEY) is required for the llm fallback")
	}

	if len(c.Answers.Rules) > 0 {
		raw, err := json.Marshal(c.Answers.Rules)
		if err != nil {
			return fmt.Errorf("config error: failed to encode answer rules: %w", err)
		}
		if err := schemas.ValidateAnswerRules(raw); err != nil {
			return fmt.Errorf("config error: invalid answer rules: %w", err)
		}
	}

	for _, p := range []string{c.Uploads.Resume, c.Uploads.CoverLetter} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: upload file not found: %s", p)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := c.Clone()

	if result.OutputFilename == "" {
		result.OutputFilename = defaults.OutputFilename
	}
	if result.LogDir == "" {
		result.LogDir = defaults.LogDir
	}

	if result.Search.MaxSearchTime == 0 {
		result.Search.MaxSearchTime = defaults.Search.MaxSearchTime
	}
	if result.Search.PageSize == 0 {
		result.Search.PageSize = defaults.Search.PageSize
	}
	if result.Search.MaxCombos == 0 {
		result.Search.MaxCombos = defaults.Search.MaxCombos
	}
	if result.Search.EmptyPageLimit == 0 {
		result.Search.EmptyPageLimit = defaults.Search.EmptyPageLimit
	}
	if result.Search.AttemptTimeout == 0 {
		result.Search.AttemptTimeout = defaults.Search.AttemptTimeout
	}

	if result.Answers.File == "" {
		result.Answers.File = defaults.Answers.File
	}
	if result.Answers.Fallback == "" {
		result.Answers.Fallback = defaults.Answers.Fallback
	}
	if result.Answers.PendingFile == "" {
		result.Answers.PendingFile = defaults.Answers.PendingFile
	}

	if result.Browser.BaseURL == "" {
		result.Browser.BaseURL = defaults.Browser.BaseURL
	}
	if result.Browser.Timeout == 0 {
		result.Browser.Timeout = defaults.Browser.Timeout
	}

	if result.Storage.Backend == "" {
		result.Storage.Backend = defaults.Storage.Backend
	}
	if result.LLM.Model == "" {
		result.LLM.Model = defaults.LLM.Model
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// Clone returns a deep copy so callers never share slices with the loaded config.
func (c *Config) Clone() Config {
	out := *c
	out.Positions = cloneStrings(c.Positions)
	out.Locations = cloneStrings(c.Locations)
	out.Blacklist = cloneStrings(c.Blacklist)
	out.BlacklistTitles = cloneStrings(c.BlacklistTitles)
	if c.ExperienceLevel != nil {
		out.ExperienceLevel = append([]types.ExperienceLevel(nil), c.ExperienceLevel...)
	}
	if c.Answers.Rules != nil {
		out.Answers.Rules = append([]types.AnswerRule(nil), c.Answers.Rules...)
	}
	return out
}

// TemplateVars returns the placeholder values available to answer templates.
func (c *Config) TemplateVars() map[string]string {
	fullName := c.Profile.FirstName
	if c.Profile.LastName != "" {
		if fullName != "" {
			fullName += " "
		}
		fullName += c.Profile.LastName
	}
	return map[string]string{
		"Salary":          c.Salary,
		"Rate":            c.Rate,
		"Phone":           c.PhoneNumber,
		"FirstName":       c.Profile.FirstName,
		"LastName":        c.Profile.LastName,
		"FullName":        fullName,
		"LinkedIn":        c.Profile.LinkedIn,
		"Website":         c.Profile.Website,
		"YearsExperience": c.Profile.YearsExperience,
		"NoticePeriod":    c.Profile.NoticePeriod,
		"Education":       c.Profile.Education,
	}
}

// Redacted returns a copy safe to log, with credentials and secrets masked.
func (c *Config) Redacted() Config {
	out := c.Clone()
	out.Username = mask(out.Username)
	out.Password = mask(out.Password)
	out.LLM.APIKey = mask(out.LLM.APIKey)
	out.Storage.DatabaseURL = mask(out.Storage.DatabaseURL)
	return out
}

func (u Uploads) absolute(base string) Uploads {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	if base == "" || base == "." {
		if cwd, err := os.Getwd(); err == nil {
			base = cwd
		}
	} else if b, err := filepath.Abs(base); err == nil {
		base = b
	}
	return Uploads{Resume: abs(u.Resume), CoverLetter: abs(u.CoverLetter)}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func compactStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
