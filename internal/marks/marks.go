// Package marks turns the ordered text tokens recognized on a scanned marksheet
// into subject/score records.
package marks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one subject line of a marksheet.
type Record struct {
	Subject  string `json:"subject"`
	Max      int    `json:"max"`
	Obtained int    `json:"obtained"`
}

// Extract groups tokens into records of three: subject, maximum score, obtained score.
//
// When the window at the cursor does not parse, the cursor moves forward by one
// token and tries again. This resynchronizes after OCR noise, but an extra or
// missing token can misalign the records that follow. Scores are not range checked.
func Extract(tokens []string) []Record {
	var out []Record
	for i := 0; i < len(tokens); {
		rec, ok := window(tokens, i)
		if !ok {
			i++
			continue
		}
		out = append(out, rec)
		i += 3
	}
	return out
}

func window(tokens []string, i int) (Record, bool) {
	if i+2 >= len(tokens) {
		return Record{}, false
	}
	maxScore, err := strconv.Atoi(strings.TrimSpace(tokens[i+1]))
	if err != nil {
		return Record{}, false
	}
	obtained, err := strconv.Atoi(strings.TrimSpace(tokens[i+2]))
	if err != nil {
		return Record{}, false
	}
	return Record{Subject: strings.TrimSpace(tokens[i]), Max: maxScore, Obtained: obtained}, true
}

// ExtractFollowing is the looser alternative heuristic: every token made only of
// digits is an obtained score and the token right before it is its subject.
// The maximum is not read from the sheet; defaultMax is used for every record.
func ExtractFollowing(tokens []string, defaultMax int) []Record {
	var out []Record
	for i := 1; i < len(tokens); i++ {
		text := strings.TrimSpace(tokens[i])
		if !isDigits(text) {
			continue
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		out = append(out, Record{Subject: strings.TrimSpace(tokens[i-1]), Max: defaultMax, Obtained: v})
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Parser names a token grouping heuristic.
type Parser string

const (
	// ParserStride is the fixed three-token grouping.
	ParserStride Parser = "stride"
	// ParserFollowing pairs each integer with the token before it.
	ParserFollowing Parser = "following"
)

// DefaultMax is the maximum score assumed by ParserFollowing.
const DefaultMax = 100

// ParseParser validates a parser name. Empty selects ParserStride.
func ParseParser(name string) (Parser, error) {
	switch p := Parser(strings.ToLower(strings.TrimSpace(name))); p {
	case "", ParserStride:
		return ParserStride, nil
	case ParserFollowing:
		return p, nil
	default:
		return "", fmt.Errorf("unknown marks parser %q (want stride or following)", name)
	}
}

// Run applies the parser to tokens.
func (p Parser) Run(tokens []string, defaultMax int) []Record {
	if p == ParserFollowing {
		return ExtractFollowing(tokens, defaultMax)
	}
	return Extract(tokens)
}

// WriteCSV writes records with a Subject,Obtained,Maximum header.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Subject", "Obtained", "Maximum"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Subject, strconv.Itoa(r.Obtained), strconv.Itoa(r.Max)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Totals sums maximum and obtained scores.
func Totals(records []Record) (maxTotal, obtained int) {
	for _, r := range records {
		maxTotal += r.Max
		obtained += r.Obtained
	}
	return maxTotal, obtained
}
