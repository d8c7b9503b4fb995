// Package riasec implements the interest profiler: a fixed list of work activities,
// each tagged with one of Holland's six interest types, rated on a five point scale.
package riasec

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed data/*.csv
var dataFS embed.FS

// Question is one work activity to rate.
type Question struct {
	Text     string `json:"question"`
	Category string `json:"category"`
}

// Suggestion lists careers for an interest type.
type Suggestion struct {
	Category string `json:"category"`
	Careers  string `json:"careers"`
}

// Bank holds the questions and career suggestions.
type Bank struct {
	Questions []Question
	careers   map[string]string
}

// LoadBank reads the question and career CSV files. Empty paths select the built-in data.
func LoadBank(questionsPath, careersPath string) (*Bank, error) {
	qr, err := openData(questionsPath, "data/questions.csv")
	if err != nil {
		return nil, err
	}
	defer qr.Close()
	questions, err := ParseQuestions(qr)
	if err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}

	cr, err := openData(careersPath, "data/careers.csv")
	if err != nil {
		return nil, err
	}
	defer cr.Close()
	careers, err := ParseCareers(cr)
	if err != nil {
		return nil, fmt.Errorf("careers: %w", err)
	}

	return &Bank{Questions: questions, careers: careers}, nil
}

func openData(path, embedded string) (io.ReadCloser, error) {
	if path == "" {
		f, err := dataFS.Open(embedded)
		if err != nil {
			return nil, fmt.Errorf("open embedded %s: %w", embedded, err)
		}
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// ParseQuestions reads a CSV with "question" and "category" columns.
func ParseQuestions(r io.Reader) ([]Question, error) {
	rows, idx, err := readTable(r, "question", "category")
	if err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(rows))
	for i, row := range rows {
		q := Question{Text: strings.TrimSpace(row[idx[0]]), Category: strings.TrimSpace(row[idx[1]])}
		if q.Text == "" || q.Category == "" {
			return nil, fmt.Errorf("row %d: question and category are required", i+2)
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, errors.New("no questions")
	}
	return out, nil
}

// ParseCareers reads a CSV with "category" and "careers" columns.
// The first row for a category wins.
func ParseCareers(r io.Reader) (map[string]string, error) {
	rows, idx, err := readTable(r, "category", "careers")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		cat := strings.TrimSpace(row[idx[0]])
		if _, ok := out[cat]; ok || cat == "" {
			continue
		}
		out[cat] = strings.TrimSpace(row[idx[1]])
	}
	return out, nil
}

// readTable returns data rows and the positions of the wanted columns.
func readTable(r io.Reader, columns ...string) ([][]string, []int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("empty csv")
	}

	header := records[0]
	idx := make([]int, len(columns))
	for i, col := range columns {
		idx[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	rows := records[1:]
	for n, row := range rows {
		for _, j := range idx {
			if j >= len(row) {
				return nil, nil, fmt.Errorf("row %d: too few fields", n+2)
			}
		}
	}
	return rows, idx, nil
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.Questions) }

// CareersFor returns suggestions for the given categories, in order,
// skipping categories without an entry.
func (b *Bank) CareersFor(categories []string) []Suggestion {
	var out []Suggestion
	for _, c := range categories {
		if careers, ok := b.careers[c]; ok {
			out = append(out, Suggestion{Category: c, Careers: careers})
		}
	}
	return out
}
