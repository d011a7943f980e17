package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeConfig writes a run config whose data files live in a temp directory.
func writeConfig(t *testing.T, extra string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	content := fmt.Sprintf(`username: user@example.com
password: secret
phone_number: "5551234"
salary: "90000"
positions: [Engineer]
locations: [Remote]
output_filename: %s
answers:
  file: %s
  pending_file: %s
%s`,
		filepath.Join(dir, "output.csv"),
		filepath.Join(dir, "qa.csv"),
		filepath.Join(dir, "pending.csv"),
		extra)
	path = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, dir
}

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		historyDays = 2
		verbose = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}
