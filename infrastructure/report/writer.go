// Package report serializes a ranked allocation into the machine-readable
// leaderboard CSV consumed by downstream tooling.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/filfund/pairrank/internal/domain"
)

// Header is the leaderboard column layout. The column names and order are
// a compatibility contract; do not reorder.
var Header = []string{
	"rank", "project", "score", "rating_log",
	"wins", "total", "winrate", "allocation_fil",
}

// BuildRows assembles report rows in ranked order. Missing records and
// allocations default to zero values rather than erroring; an entity
// outside the allocation window legitimately has no grant.
//
// Returns domain.ErrInvalidScore (wrapped with the project name) if any
// fitted score is non-positive: the log-rating would be undefined, and a
// non-positive score means the fitter's epsilon floor was violated.
func BuildRows(
	ranked []domain.RankedEntry,
	records map[string]domain.Record,
	allocations map[string]int64,
) ([]domain.ReportRow, error) {
	rows := make([]domain.ReportRow, 0, len(ranked))
	for i, entry := range ranked {
		if entry.Score <= 0 {
			return nil, &domain.InvalidScoreError{Project: entry.Project, Score: entry.Score}
		}
		rows = append(rows, domain.ReportRow{
			Rank:       i + 1,
			Project:    entry.Project,
			Score:      entry.Score,
			RatingLog:  math.Log(entry.Score),
			Record:     records[entry.Project],
			Allocation: allocations[entry.Project],
		})
	}
	return rows, nil
}

// Write emits the leaderboard CSV to w: the header followed by one row
// per entity in RankedList order. Scores use fixed 6-decimal formatting,
// log-ratings and win rates fixed 3-decimal formatting.
func Write(
	w io.Writer,
	ranked []domain.RankedEntry,
	records map[string]domain.Record,
	allocations map[string]int64,
) error {
	rows, err := BuildRows(ranked, records, allocations)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Rank),
			row.Project,
			strconv.FormatFloat(row.Score, 'f', 6, 64),
			strconv.FormatFloat(row.RatingLog, 'f', 3, 64),
			strconv.Itoa(row.Record.Wins),
			strconv.Itoa(row.Record.Total),
			strconv.FormatFloat(row.Record.WinRate(), 'f', 3, 64),
			strconv.FormatInt(row.Allocation, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.Rank, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile emits the leaderboard CSV to the file at path, creating or
// truncating it.
func WriteFile(
	path string,
	ranked []domain.RankedEntry,
	records map[string]domain.Record,
	allocations map[string]int64,
) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	if err := Write(f, ranked, records, allocations); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
