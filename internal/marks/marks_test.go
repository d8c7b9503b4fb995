package marks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []Record
	}{
		{
			name:   "two clean records",
			tokens: []string{"Math", "100", "85", "Science", "100", "90"},
			want: []Record{
				{Subject: "Math", Max: 100, Obtained: 85},
				{Subject: "Science", Max: 100, Obtained: 90},
			},
		},
		{
			name:   "malformed leading window",
			tokens: []string{"Math", "NaN", "100", "85"},
			want:   []Record{{Subject: "NaN", Max: 100, Obtained: 85}},
		},
		{
			name:   "header noise before records",
			tokens: []string{"Marksheet", "Subject", "Max", "Obtained", "English", "50", "41"},
			want:   []Record{{Subject: "English", Max: 50, Obtained: 41}},
		},
		{
			name:   "missing obtained score shifts alignment",
			tokens: []string{"Math", "100", "Science", "100", "90"},
			want:   []Record{{Subject: "Science", Max: 100, Obtained: 90}},
		},
		{
			name:   "extra token misaligns following record",
			tokens: []string{"Math", "100", "85", "7", "Science", "100", "90"},
			want: []Record{
				{Subject: "Math", Max: 100, Obtained: 85},
				{Subject: "Science", Max: 100, Obtained: 90},
			},
		},
		{
			name:   "numeric label accepted",
			tokens: []string{"1", "2", "3"},
			want:   []Record{{Subject: "1", Max: 2, Obtained: 3}},
		},
		{
			name:   "whitespace around numbers",
			tokens: []string{" Art ", " 100", "77 "},
			want:   []Record{{Subject: "Art", Max: 100, Obtained: 77}},
		},
		{
			name:   "no range validation",
			tokens: []string{"Physics", "100", "140", "Chem", "-5", "3"},
			want: []Record{
				{Subject: "Physics", Max: 100, Obtained: 140},
				{Subject: "Chem", Max: -5, Obtained: 3},
			},
		},
		{name: "trailing partial window", tokens: []string{"Math", "100"}, want: nil},
		{name: "empty", tokens: nil, want: nil},
		{name: "no numbers", tokens: []string{"a", "b", "c", "d"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.tokens))
		})
	}
}

func TestExtractFollowing(t *testing.T) {
	tokens := []string{"Name", "Asha", "Math", "85", "Science", "90", "Total", "175", "9.5"}
	got := ExtractFollowing(tokens, DefaultMax)
	assert.Equal(t, []Record{
		{Subject: "Math", Max: 100, Obtained: 85},
		{Subject: "Science", Max: 100, Obtained: 90},
		{Subject: "Total", Max: 100, Obtained: 175},
	}, got)

	assert.Empty(t, ExtractFollowing([]string{"42"}, DefaultMax), "first token has no label")
	assert.Empty(t, ExtractFollowing(nil, DefaultMax))
}

func TestParseParser(t *testing.T) {
	p, err := ParseParser("")
	require.NoError(t, err)
	assert.Equal(t, ParserStride, p)

	p, err = ParseParser(" Following ")
	require.NoError(t, err)
	assert.Equal(t, ParserFollowing, p)

	_, err = ParseParser("columns")
	require.Error(t, err)
}

func TestParserRun(t *testing.T) {
	tokens := []string{"Math", "100", "85"}
	assert.Len(t, ParserStride.Run(tokens, 0), 1)
	assert.Equal(t, []Record{{Subject: "Math", Max: 10, Obtained: 100}, {Subject: "100", Max: 10, Obtained: 85}},
		ParserFollowing.Run(tokens, 10))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Record{{Subject: "Math, Applied", Max: 100, Obtained: 85}})
	require.NoError(t, err)
	assert.Equal(t, "Subject,Obtained,Maximum\n\"Math, Applied\",85,100\n", buf.String())
}

func TestTotals(t *testing.T) {
	maxTotal, obtained := Totals([]Record{{Max: 100, Obtained: 85}, {Max: 50, Obtained: 40}})
	assert.Equal(t, 150, maxTotal)
	assert.Equal(t, 125, obtained)
}
