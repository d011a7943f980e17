package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonathan/easyapply/internal/config"
)

// loadConfig reads the config file and applies environment overrides. With strict set
// the file must exist and the result must validate; otherwise a missing file yields
// the defaults, which is enough for the inspection commands.
func loadConfig(path string, strict bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if strict || !errors.Is(err, fs.ErrNotExist) {
			return nil, describeConfigError(path, err)
		}
		d := config.Defaults()
		cfg = &d
	}

	merged := cfg.ApplyEnv(os.LookupEnv)
	if verbose {
		merged.Verbose = true
	}
	if strict {
		if err := merged.Validate(); err != nil {
			return nil, err
		}
	}
	return &merged, nil
}

// describeConfigError points at --config when the file is missing.
func describeConfigError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s not found (use --config to point at one): %w", path, err)
	}
	return err
}
