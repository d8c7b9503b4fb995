// Package responselog persists completed career-quiz traversals to an
// append-only CSV file whose header grows as new node columns appear.
package responselog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/pavelanni/dreamroute/internal/flow"
)

// Fixed column names. The flow package refuses node IDs that collide with them.
const (
	ColName      = flow.ColumnName
	ColEmail     = flow.ColumnEmail
	ColTimestamp = flow.ColumnTimestamp
	ColField     = flow.ColumnField
)

// AnonymousName is logged for participants who leave their name blank.
const AnonymousName = "Anonymous"

// TimeLayout is the timestamp format written to the log.
const TimeLayout = "2006-01-02 15:04:05"

// CompletedResponse is one finished traversal.
type CompletedResponse struct {
	Name      string
	Email     string
	Timestamp time.Time
	Steps     []flow.Step
	Field     string
}

func (r CompletedResponse) values() map[string]string {
	v := make(map[string]string, len(r.Steps)+4)
	for _, s := range r.Steps {
		v[string(s.Node)] = s.Answer
	}
	v[ColName] = r.Name
	v[ColEmail] = r.Email
	v[ColTimestamp] = r.Timestamp.Format(TimeLayout)
	v[ColField] = r.Field
	return v
}

// Table is the log contents with every row padded to the header width.
type Table struct {
	Header []string
	Rows   [][]string

	// widened is set when rows longer than the file header forced
	// placeholder columns onto Header.
	widened bool
}

// Maps returns one column-to-value map per row.
func (t Table) Maps() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Header))
		for j, col := range t.Header {
			m[col] = row[j]
		}
		out[i] = m
	}
	return out
}

// NodeColumns returns the header columns that hold answers.
func (t Table) NodeColumns() []string {
	var out []string
	for _, col := range t.Header {
		if !isFixed(col) {
			out = append(out, col)
		}
	}
	return out
}

// Log is a CSV response log. It is safe for concurrent use within one process.
type Log struct {
	path string
	mu   sync.Mutex
}

// Open prepares a log at path, creating the parent directory.
// The file itself is created on the first Append.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("response log path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	return &Log{path: path}, nil
}

// Path returns the file path of the log.
func (l *Log) Path() string { return l.path }

// Append writes one response. When the response answers nodes the header
// does not have yet, the file is rewritten with the widened header.
func (l *Log) Append(r CompletedResponse) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	values := r.values()
	current, err := l.read()
	if err != nil {
		return err
	}

	nodes := current.NodeColumns()
	var added []string
	for _, s := range r.Steps {
		col := string(s.Node)
		if isFixed(col) {
			return fmt.Errorf("node %q collides with a fixed log column", col)
		}
		if !slices.Contains(nodes, col) && !slices.Contains(added, col) {
			added = append(added, col)
		}
	}

	if len(current.Header) > 0 && len(added) == 0 && !current.widened {
		return l.appendRow(rowFor(current.Header, values))
	}

	header := buildHeader(append(nodes, added...))
	rows := make([][]string, 0, len(current.Rows)+1)
	for _, old := range current.Rows {
		rows = append(rows, remap(current.Header, header, old))
	}
	rows = append(rows, rowFor(header, values))
	if len(current.Header) > 0 && len(added) > 0 {
		slog.Info("response log header widened", "path", l.path, "added", added)
	}
	return l.rewrite(header, rows)
}

// ReadAll returns the whole log. A missing file yields an empty table.
func (l *Log) ReadAll() (Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *Log) read() (Table, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("open response log: %w", err)
	}
	defer f.Close()
	return readTable(f)
}

func readTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read response log: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	t := Table{Header: slices.Clone(records[0])}
	width := len(t.Header)
	for _, rec := range records[1:] {
		width = max(width, len(rec))
	}
	// Rows written without a matching header keep their extra fields
	// under placeholder names rather than being cut off.
	for i := len(t.Header); i < width; i++ {
		t.Header = append(t.Header, placeholderColumn(t.Header, i))
		t.widened = true
	}
	for _, rec := range records[1:] {
		row := make([]string, width)
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	if t.widened {
		slog.Warn("response log has rows wider than its header", "columns", len(records[0]), "widest", width)
	}
	return t, nil
}

func (l *Log) appendRow(row []string) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open response log: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		f.Close()
		return fmt.Errorf("write response: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write response: %w", err)
	}
	return f.Close()
}

// rewrite replaces the file atomically through a temp file in the same directory.
func (l *Log) rewrite(header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".responses-*.csv")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp log: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace response log: %w", err)
	}
	return nil
}

func isFixed(col string) bool {
	switch col {
	case ColName, ColEmail, ColTimestamp, ColField:
		return true
	}
	return false
}

// placeholderColumn names the unnamed column at index i.
func placeholderColumn(header []string, i int) string {
	name := fmt.Sprintf("column_%d", i+1)
	for slices.Contains(header, name) {
		name += "_"
	}
	return name
}

func buildHeader(nodes []string) []string {
	h := []string{ColName, ColEmail, ColTimestamp}
	h = append(h, nodes...)
	return append(h, ColField)
}

func rowFor(header []string, values map[string]string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = values[col]
	}
	return row
}

func remap(from, to, row []string) []string {
	values := make(map[string]string, len(from))
	for i, col := range from {
		values[col] = row[i]
	}
	return rowFor(to, values)
}
