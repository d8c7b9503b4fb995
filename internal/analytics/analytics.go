// Package analytics runs aggregate queries over the response log with an
// in-memory DuckDB instance reading the CSV file directly.
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// ErrUnknownColumn is returned when the log has no column for the requested node.
var ErrUnknownColumn = errors.New("unknown column")

// Count is one value and how often it occurs.
type Count struct {
	Value string `json:"value"`
	N     int64  `json:"n"`
}

// Summary describes the whole log.
type Summary struct {
	Total   int64   `json:"total"`
	First   string  `json:"first,omitempty"`
	Last    string  `json:"last,omitempty"`
	ByField []Count `json:"by_field"`
}

// Analyzer owns an in-memory DuckDB connection.
type Analyzer struct {
	db *sql.DB
}

// Open starts an in-memory DuckDB database.
func Open() (*Analyzer, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return &Analyzer{db: db}, nil
}

// Close releases the database.
func (a *Analyzer) Close() error { return a.db.Close() }

// Summarize counts responses per predicted field. A missing log yields an empty summary.
func (a *Analyzer) Summarize(ctx context.Context, csvPath string) (Summary, error) {
	var s Summary
	ok, err := exists(csvPath)
	if err != nil || !ok {
		return s, err
	}
	src := source(csvPath)

	var first, last sql.NullString
	err = a.db.QueryRowContext(ctx,
		`SELECT count(*), min("timestamp"), max("timestamp") FROM `+src,
	).Scan(&s.Total, &first, &last)
	if err != nil {
		return s, fmt.Errorf("count responses: %w", err)
	}
	s.First, s.Last = first.String, last.String

	s.ByField, err = a.counts(ctx, src, "predicted_field")
	if err != nil {
		return s, fmt.Errorf("count fields: %w", err)
	}
	return s, nil
}

// AnswerDistribution counts the answers recorded for one node,
// ignoring responses that never visited it.
func (a *Analyzer) AnswerDistribution(ctx context.Context, csvPath, nodeID string) ([]Count, error) {
	ok, err := exists(csvPath)
	if err != nil || !ok {
		return nil, err
	}
	src := source(csvPath)

	cols, err := a.columns(ctx, src)
	if err != nil {
		return nil, err
	}
	found := false
	for _, c := range cols {
		if c == nodeID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, nodeID)
	}
	return a.counts(ctx, src, nodeID)
}

func (a *Analyzer) counts(ctx context.Context, src, column string) ([]Count, error) {
	col := quoteIdent(column)
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+col+` AS v, count(*) AS n FROM `+src+`
		 WHERE `+col+` IS NOT NULL AND `+col+` <> ''
		 GROUP BY v ORDER BY n DESC, v`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Value, &c.N); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (a *Analyzer) columns(ctx context.Context, src string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT * FROM `+src+` LIMIT 0`)
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	defer rows.Close()
	return rows.Columns()
}

// source returns a read_csv table expression. Every column is read as text
// so answer labels that look like numbers keep their spelling.
func source(path string) string {
	return `read_csv(` + quoteLiteral(path) + `, header = true, all_varchar = true)`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size() > 0, nil
}
