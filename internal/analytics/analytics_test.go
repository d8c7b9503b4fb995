package analytics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/responselog"
)

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.csv")
	l, err := responselog.Open(path)
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []struct {
		field string
		steps []flow.Step
	}{
		{"General Studies / Exploration", []flow.Step{{Node: "q1", Answer: "Technology"}, {Node: "q2_cs", Answer: "Yes"}}},
		{"General Studies / Exploration", []flow.Step{{Node: "q1", Answer: "Technology"}, {Node: "q2_cs", Answer: "No"}}},
		{"Design / Arts", []flow.Step{{Node: "q1", Answer: "Arts"}, {Node: "q2_creative", Answer: "Yes"}}},
	}
	for i, e := range entries {
		require.NoError(t, l.Append(responselog.CompletedResponse{
			Name:      "P",
			Email:     "p@example.com",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Steps:     e.steps,
			Field:     e.field,
		}))
	}
	return path
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSummarize(t *testing.T) {
	a := newTestAnalyzer(t)
	path := writeLog(t)

	s, err := a.Summarize(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, "2025-03-01 09:00:00", s.First)
	assert.Equal(t, "2025-03-01 09:02:00", s.Last)
	assert.Equal(t, []Count{
		{Value: "General Studies / Exploration", N: 2},
		{Value: "Design / Arts", N: 1},
	}, s.ByField)
}

func TestSummarizeMissingFile(t *testing.T) {
	a := newTestAnalyzer(t)
	s, err := a.Summarize(context.Background(), filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Zero(t, s.Total)
}

func TestAnswerDistribution(t *testing.T) {
	a := newTestAnalyzer(t)
	path := writeLog(t)

	got, err := a.AnswerDistribution(context.Background(), path, "q1")
	require.NoError(t, err)
	assert.Equal(t, []Count{{Value: "Technology", N: 2}, {Value: "Arts", N: 1}}, got)

	got, err = a.AnswerDistribution(context.Background(), path, "q2_creative")
	require.NoError(t, err)
	assert.Equal(t, []Count{{Value: "Yes", N: 1}}, got)
}

func TestAnswerDistributionUnknownNode(t *testing.T) {
	a := newTestAnalyzer(t)
	path := writeLog(t)

	_, err := a.AnswerDistribution(context.Background(), path, "q9")
	assert.True(t, errors.Is(err, ErrUnknownColumn))
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `'it''s.csv'`, quoteLiteral("it's.csv"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
