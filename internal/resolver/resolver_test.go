package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/easyapply/internal/answers"
	"github.com/jonathan/easyapply/internal/form"
	"github.com/jonathan/easyapply/internal/heuristic"
	"github.com/jonathan/easyapply/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBackend records appends in memory.
type memBackend struct {
	entries []types.AnswerEntry
}

func (m *memBackend) LoadAll(context.Context) ([]types.AnswerEntry, error) { return m.entries, nil }
func (m *memBackend) Ensure(context.Context) error                          { return nil }
func (m *memBackend) Append(_ context.Context, e types.AnswerEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

// countingHeuristic wraps a heuristic and counts calls.
type countingHeuristic struct {
	inner Heuristic
	calls int
}

func (c *countingHeuristic) Resolve(ctx context.Context, q string) (string, error) {
	c.calls++
	return c.inner.Resolve(ctx, q)
}

type fakeField struct {
	label    string
	labelErr error
	caps     form.Capabilities
	options  []string
	chosen   int
	text     string
}

func (f *fakeField) Label(context.Context) (string, error)                    { return f.label, f.labelErr }
func (f *fakeField) Capabilities(context.Context) (form.Capabilities, error) { return f.caps, nil }
func (f *fakeField) Options(context.Context, form.Kind) ([]string, error)    { return f.options, nil }
func (f *fakeField) Choose(_ context.Context, _ form.Kind, i int) error {
	f.chosen = i
	return nil
}
func (f *fakeField) SetText(_ context.Context, v string) error {
	f.text = v
	return nil
}

func setup(t *testing.T, stored []types.AnswerEntry, fallback heuristic.Fallback) (*Resolver, *memBackend, *countingHeuristic) {
	t.Helper()
	backend := &memBackend{entries: stored}
	store := answers.NewStore(backend, nil)
	require.NoError(t, store.Load(context.Background()))

	h, err := heuristic.New(heuristic.DefaultRules(), map[string]string{"Salary": "90000", "YearsExperience": "2 years"}, fallback, nil)
	require.NoError(t, err)
	counting := &countingHeuristic{inner: h}
	return New(store, counting, nil), backend, counting
}

func TestResolve_Idempotent(t *testing.T) {
	prompts := 0
	r, backend, _ := setup(t, nil, heuristic.FallbackFunc(func(context.Context, string) (string, error) {
		prompts++
		return "Blue", nil
	}))
	ctx := context.Background()

	first, ok, err := r.Resolve(ctx, "Favourite colour?")
	require.NoError(t, err)
	require.True(t, ok)
	second, _, err := r.Resolve(ctx, "favourite colour?")
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, SourceHeuristic, first.Source)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, 1, prompts, "the operator is asked once per question")
	assert.Len(t, backend.entries, 1)
}

func TestResolve_FuzzyLookupSkipsHeuristic(t *testing.T) {
	r, backend, counting := setup(t, []types.AnswerEntry{{Question: "years of experience", Answer: "4 years"}}, nil)

	ans, ok, err := r.Resolve(context.Background(), "How many years of experience do you have?")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4 years", ans.Text)
	assert.Equal(t, SourceCache, ans.Source)
	assert.Zero(t, counting.calls)

	// The longer phrasing is committed as its own key
	require.Len(t, backend.entries, 2)
	assert.Equal(t, "how many years of experience do you have?", backend.entries[1].Question)
}

func TestResolve_SalaryPersisted(t *testing.T) {
	r, backend, _ := setup(t, nil, nil)

	ans, _, err := r.Resolve(context.Background(), "What is your expected salary?")
	require.NoError(t, err)
	assert.Equal(t, "90000", ans.Text)
	assert.Equal(t, []types.AnswerEntry{{Question: "what is your expected salary?", Answer: "90000"}}, backend.entries)
}

func TestResolve_EmptyLabelSkipped(t *testing.T) {
	r, backend, counting := setup(t, nil, nil)

	_, ok, err := r.Resolve(context.Background(), "  \n ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, counting.calls)
	assert.Empty(t, backend.entries)
}

func TestResolve_HeuristicFailureNotCommitted(t *testing.T) {
	r, backend, _ := setup(t, nil, nil)

	_, ok, err := r.Resolve(context.Background(), "favourite colour")
	assert.True(t, ok)
	assert.ErrorIs(t, err, heuristic.ErrNoAnswer)
	assert.Empty(t, backend.entries)
}

func TestResolve_DeferredAnswerNotCommitted(t *testing.T) {
	ctx := context.Background()
	backend := &memBackend{}
	store := answers.NewStore(backend, nil)
	require.NoError(t, store.Load(ctx))
	deferred := heuristic.NewDeferredFallback("N/A")
	h, err := heuristic.New(heuristic.DefaultRules(), nil, deferred, nil)
	require.NoError(t, err)
	r := New(store, h, nil).WithPending(deferred)

	f := &fakeField{label: "Favourite colour?"}
	ans, ok, err := r.ResolveAndFill(ctx, f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SourceDeferred, ans.Source)
	assert.Equal(t, "N/A", f.text, "the placeholder still fills the field")
	assert.Empty(t, backend.entries)
	assert.Equal(t, []string{"favourite colour?"}, deferred.Pending())

	// an answer supplied after review is accepted
	added, err := store.Commit(ctx, "favourite colour?", "Blue")
	require.NoError(t, err)
	assert.True(t, added)
	got, found := store.Lookup("Favourite colour?")
	require.True(t, found)
	assert.Equal(t, "Blue", got)
}

func TestResolve_ChainedAnswerCommittedWhenNotDeferred(t *testing.T) {
	ctx := context.Background()
	backend := &memBackend{}
	store := answers.NewStore(backend, nil)
	require.NoError(t, store.Load(ctx))
	deferred := heuristic.NewDeferredFallback("N/A")
	model := heuristic.FallbackFunc(func(_ context.Context, q string) (string, error) {
		if q == "favourite colour?" {
			return "Blue", nil
		}
		return "", heuristic.ErrNoAnswer
	})
	h, err := heuristic.New(nil, nil, heuristic.Chain{model, deferred}, nil)
	require.NoError(t, err)
	r := New(store, h, nil).WithPending(deferred)

	ans, _, err := r.Resolve(ctx, "Favourite colour?")
	require.NoError(t, err)
	assert.Equal(t, SourceHeuristic, ans.Source)

	ans, _, err = r.Resolve(ctx, "Favourite animal?")
	require.NoError(t, err)
	assert.Equal(t, SourceDeferred, ans.Source)

	assert.Equal(t, []types.AnswerEntry{{Question: "favourite colour?", Answer: "Blue"}}, backend.entries)
}

func TestResolveAndFill_Radio(t *testing.T) {
	r, _, _ := setup(t, nil, nil)
	f := &fakeField{label: "Will you require visa sponsorship?", caps: form.Capabilities{HasRadio: true}, options: []string{"Yes", "No"}, chosen: -1}

	ans, ok, err := r.ResolveAndFill(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "No", ans.Text)
	assert.Equal(t, 1, f.chosen)
}

func TestProcessFields_PartialFailure(t *testing.T) {
	r, backend, _ := setup(t, nil, nil)
	fields := []form.Field{
		&fakeField{labelErr: errors.New("stale element")},
		&fakeField{label: "Favourite colour"},
		&fakeField{label: "Are you willing to relocate?", caps: form.Capabilities{HasSelect: true}, options: []string{"Maybe"}, chosen: -1},
		&fakeField{label: ""},
		&fakeField{label: "What is your expected salary?"},
	}

	filled, err := r.ProcessFields(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, 1, filled)
	assert.Equal(t, "90000", fields[4].(*fakeField).text)
	// The relocate answer is cached even though no option matched
	assert.Len(t, backend.entries, 2)
}

func TestProcessFields_Cancelled(t *testing.T) {
	r, _, _ := setup(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ProcessFields(ctx, []form.Field{&fakeField{label: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}
