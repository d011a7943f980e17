package heuristic

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptFallback_ReadsLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPromptFallback(strings.NewReader("Blue\nGreen\n"), &out)

	got, err := p.Answer(context.Background(), "favourite colour?")
	require.NoError(t, err)
	assert.Equal(t, "Blue", got)
	assert.Contains(t, out.String(), "Please provide answer for: favourite colour?")

	got, err = p.Answer(context.Background(), "second favourite?")
	require.NoError(t, err)
	assert.Equal(t, "Green", got)
}

func TestPromptFallback_EOF(t *testing.T) {
	p := NewPromptFallback(strings.NewReader(""), io.Discard)

	_, err := p.Answer(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPromptFallback_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	p := NewPromptFallback(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Answer(ctx, "anything")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeferredFallback(t *testing.T) {
	d := NewDeferredFallback("Yes")
	ctx := context.Background()

	for _, q := range []string{"q1", "q2", "q1"} {
		got, err := d.Answer(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, "Yes", got)
	}
	assert.Equal(t, []string{"q1", "q2"}, d.Pending())

	path := filepath.Join(t.TempDir(), "pending.csv")
	n, err := d.WritePending(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Question,Answer\nq1,\nq2,\n", string(data))

	assert.True(t, d.IsPending("q1"))
	assert.False(t, d.IsPending("q3"))

	// a later run that meets q2 again and a new q3 only adds q3
	next := NewDeferredFallback("Yes")
	for _, q := range []string{"q2", "q3"} {
		_, err := next.Answer(ctx, q)
		require.NoError(t, err)
	}
	n, err = next.WritePending(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, _ = os.ReadFile(path)
	assert.Equal(t, 1, strings.Count(string(data), "Question,Answer"), "header written once")
	assert.Equal(t, "Question,Answer\nq1,\nq2,\nq3,\n", string(data))

	n, err = next.WritePending(path)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeferredFallback_WritePendingUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	require.NoError(t, os.WriteFile(path, []byte("Question,Answer\n\"broken\n"), 0o644))

	d := NewDeferredFallback("")
	_, err := d.Answer(context.Background(), "q1")
	require.NoError(t, err)
	_, err = d.WritePending(path)
	assert.Error(t, err)
}

func TestDeferredFallback_NothingPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	n, err := NewDeferredFallback("").WritePending(path)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoFileExists(t, path)
}

func TestChain(t *testing.T) {
	failing := FallbackFunc(func(context.Context, string) (string, error) {
		return "", errors.New("llm unavailable")
	})
	ctx := context.Background()

	got, err := Chain{failing, StaticFallback(""), StaticFallback("Yes")}.Answer(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "Yes", got)

	_, err = Chain{failing}.Answer(ctx, "q")
	assert.EqualError(t, err, "llm unavailable")

	got, err = Chain{}.Answer(ctx, "q")
	require.NoError(t, err)
	assert.Empty(t, got)
}
