package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easyapply/internal/config"
)

func TestBuildFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("static", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Answers.Fallback = config.FallbackStatic
		cfg.Answers.DefaultAnswer = "Yes"

		f, err := buildFallback(ctx, &cfg, strings.NewReader(""), &bytes.Buffer{}, nil)
		require.NoError(t, err)
		answer, err := f.Answer(ctx, "anything?")
		require.NoError(t, err)
		assert.Equal(t, "Yes", answer)
		assert.Nil(t, f.deferred)
		assert.NoError(t, f.Close())
	})

	t.Run("prompt reads one line", func(t *testing.T) {
		cfg := config.Defaults()
		var out bytes.Buffer

		f, err := buildFallback(ctx, &cfg, strings.NewReader("42\n"), &out, nil)
		require.NoError(t, err)
		answer, err := f.Answer(ctx, "how many?")
		require.NoError(t, err)
		assert.Equal(t, "42", answer)
		assert.Contains(t, out.String(), "how many?")
	})

	t.Run("defer queues questions", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Answers.Fallback = config.FallbackDefer
		cfg.Answers.DefaultAnswer = "N/A"

		f, err := buildFallback(ctx, &cfg, strings.NewReader(""), &bytes.Buffer{}, nil)
		require.NoError(t, err)
		for _, q := range []string{"q one", "q two", "q one"} {
			answer, err := f.Answer(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, "N/A", answer)
		}

		path := filepath.Join(t.TempDir(), "pending.csv")
		assert.Equal(t, 2, f.writePending(path, commandLogger()))

		file, err := os.Open(path)
		require.NoError(t, err)
		defer file.Close()
		rows, err := csv.NewReader(file).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Question", "Answer"}, {"q one", ""}, {"q two", ""}}, rows)
	})
}

func TestWritePending_NoDeferred(t *testing.T) {
	f := &fallbacks{}
	path := filepath.Join(t.TempDir(), "pending.csv")
	assert.Equal(t, 0, f.writePending(path, commandLogger()))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
