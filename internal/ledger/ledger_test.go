package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easyapply/internal/types"
)

func writeFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRecent_SkipsJobAppliedTwoHoursAgo(t *testing.T) {
	path := writeFile(t, "2024-01-01 10:00:00,999,Engineer,Acme,True,True")
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	ids, err := Recent(context.Background(), NewCSVFile(path, nil), now, DefaultWindow)
	require.NoError(t, err)
	assert.Contains(t, ids, "999")
}

func TestRecent_Window(t *testing.T) {
	path := writeFile(t,
		"2024-01-09 12:00:00,111,One day old,Acme,True,True",
		"2024-01-07 12:00:00,333,Three days old,Acme,True,False",
		"2024-01-08 12:00:00,222,Exactly two days,Acme,False,False",
	)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	ids, err := Recent(context.Background(), NewCSVFile(path, nil), now, DefaultWindow)
	require.NoError(t, err)
	assert.Contains(t, ids, "111")
	assert.NotContains(t, ids, "333")
	assert.NotContains(t, ids, "222", "cutoff is exclusive")
}

func TestRecent_MissingFile(t *testing.T) {
	l := NewCSVFile(filepath.Join(t.TempDir(), "missing.csv"), nil)
	ids, err := Recent(context.Background(), l, time.Now(), DefaultWindow)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSince_SkipsInvalidRows(t *testing.T) {
	path := writeFile(t,
		"not a date,1,a,b,True,True",
		"2024-01-01 10:00:00,2,a,b",
		"2024-01-01 10:00:00,3,a,b,maybe,True",
		"2024-01-01 10:00:00,4,Engineer,Acme,true,false",
	)
	recs, err := NewCSVFile(path, nil).Since(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "4", recs[0].JobID)
	assert.True(t, recs[0].Attempted)
	assert.False(t, recs[0].Result)
}

func TestAppend_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "output.csv")
	l := NewCSVFile(path, nil)
	ts := time.Date(2024, 3, 5, 9, 7, 1, 0, time.Local)

	require.NoError(t, l.Append(context.Background(), types.AppliedJobRecord{
		Timestamp: ts, JobID: "42", JobTitle: "Backend Engineer", Company: "Acme, Inc", Attempted: true, Result: false,
	}))
	require.NoError(t, l.Append(context.Background(), types.AppliedJobRecord{
		Timestamp: ts, JobID: "43", JobTitle: "SRE", Company: "Initech",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2024-03-05 09:07:01,42,Backend Engineer,\"Acme, Inc\",True,False\n"+
			"2024-03-05 09:07:01,43,SRE,Initech,False,False\n",
		string(data))

	recs, err := l.Since(context.Background(), ts.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Acme, Inc", recs[0].Company)
	assert.True(t, recs[0].Timestamp.Equal(ts))
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		title   string
		job     string
		company string
	}{
		{"Senior Go Engineer | Acme | LinkedIn", "Senior Go Engineer", "Acme"},
		{"(3) Data Engineer | Initech | LinkedIn", "Data Engineer", "Initech"},
		{"(12) Platform Lead | ~Globex | LinkedIn", "Platform Lead", "Globex"},
		{"Just a title", "Just a title", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			job, company := ParseTitle(tt.title)
			assert.Equal(t, tt.job, job)
			assert.Equal(t, tt.company, company)
		})
	}
}
