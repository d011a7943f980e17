package config

import "os"

// Environment variables that override secrets and connection settings.
const (
	EnvUsername    = "EASYAPPLY_USERNAME"
	EnvPassword    = "EASYAPPLY_PASSWORD"
	EnvPhone       = "EASYAPPLY_PHONE"
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv returns a copy of the config with values present in the environment taking
// priority over the file. A nil lookup reads the process environment.
func (c *Config) ApplyEnv(lookup LookupFunc) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	out := c.Clone()

	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&out.Username, EnvUsername)
	set(&out.Password, EnvPassword)
	set(&out.PhoneNumber, EnvPhone)
	set(&out.LLM.APIKey, EnvAPIKey)
	set(&out.Storage.DatabaseURL, EnvDatabaseURL)

	return out
}
