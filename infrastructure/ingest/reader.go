// Package ingest parses raw pairwise-comparison records into a validated
// outcome list. It is the only component that sees unvalidated input;
// everything downstream may assume every outcome is well-formed.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/filfund/pairrank/internal/domain"
)

// Column names recognized in the comparisons file. WinnerName takes
// precedence over the symbolic Winner side selector when both are set.
const (
	ColumnProjectA   = "project_a"
	ColumnProjectB   = "project_b"
	ColumnWinner     = "winner"
	ColumnWinnerName = "winner_name"
)

// suggestionMaxDistance bounds how far a misspelled winner may be from a
// participant before the error stops offering a "did you mean" hint.
const suggestionMaxDistance = 5

// ReadFile parses the comparisons CSV at path into a validated outcome
// list. See Read for the row contract.
func ReadFile(path string) ([]domain.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open comparisons file: %w", err)
	}
	defer f.Close()

	outcomes, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return outcomes, nil
}

// Read parses comparison rows from r. Each row names two participants
// and declares a winner, either explicitly via winner_name or as a
// symbolic side selector ("project_a"/"project_b") resolved against the
// row's own participants.
//
// Row order is preserved: it affects nothing downstream but keeps any
// iteration-order-dependent arithmetic reproducible.
//
// Returns domain.ErrMalformedRecord (wrapped with row context) when a
// winner cannot be resolved to one of the two participants, and
// domain.ErrEmptyInput when zero valid rows are produced. Ingestion is
// all-or-nothing; there is no best-effort mode.
func Read(r io.Reader) ([]domain.Outcome, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, domain.ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColumnProjectA, ColumnProjectB} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var outcomes []domain.Outcome
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		// FieldPos reports the physical line the record starts on, which
		// stays accurate when quoted fields contain newlines.
		line, _ := cr.FieldPos(0)

		outcome, err := resolveRow(record, columns, line)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) == 0 {
		return nil, domain.ErrEmptyInput
	}
	return outcomes, nil
}

// resolveRow turns one CSV record into a validated Outcome.
func resolveRow(record []string, columns map[string]int, line int) (domain.Outcome, error) {
	a := normalizeName(field(record, columns, ColumnProjectA))
	b := normalizeName(field(record, columns, ColumnProjectB))
	winnerKey := strings.TrimSpace(field(record, columns, ColumnWinner))
	winnerName := normalizeName(field(record, columns, ColumnWinnerName))

	if a == "" || b == "" || a == b {
		return domain.Outcome{}, &domain.MalformedRecordError{
			Line: line, ProjectA: a, ProjectB: b, Winner: winnerName,
		}
	}

	var winner string
	switch {
	case winnerName != "":
		winner = winnerName
	case winnerKey == ColumnProjectA:
		winner = a
	case winnerKey == ColumnProjectB:
		winner = b
	default:
		return domain.Outcome{}, &domain.MalformedRecordError{
			Line: line, ProjectA: a, ProjectB: b, Winner: winnerKey,
		}
	}

	if winner != a && winner != b {
		return domain.Outcome{}, &domain.MalformedRecordError{
			Line: line, ProjectA: a, ProjectB: b, Winner: winner,
			Suggestion: closestParticipant(winner, a, b),
		}
	}

	return domain.Outcome{ProjectA: a, ProjectB: b, Winner: winner}, nil
}

// field returns the named column's value, or "" when the column is
// absent or the row is short.
func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// normalizeName trims whitespace and applies Unicode NFC so that
// byte-different but canonically equal names aggregate together.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// closestParticipant returns whichever participant is nearer to winner by
// edit distance, or "" when neither is plausibly a misspelling.
func closestParticipant(winner, a, b string) string {
	if winner == "" {
		return ""
	}
	da := levenshtein.ComputeDistance(winner, a)
	db := levenshtein.ComputeDistance(winner, b)
	closest, distance := a, da
	if db < da {
		closest, distance = b, db
	}
	if distance > suggestionMaxDistance {
		return ""
	}
	return closest
}
