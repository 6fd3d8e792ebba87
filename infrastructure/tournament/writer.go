package tournament

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/filfund/pairrank/internal/domain"
)

// ComparisonsHeader is the column layout of the comparisons CSV. The
// ranking pipeline reads the same columns back, so the two sides must
// stay in sync.
var ComparisonsHeader = []string{"project_a", "project_b", "winner", "winner_name"}

// WriteComparisons writes judged outcomes as CSV. The winner column
// carries the symbolic side and winner_name the resolved project, which
// keeps rows unambiguous even if side columns are later reordered.
func WriteComparisons(w io.Writer, outcomes []domain.Outcome) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ComparisonsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, outcome := range outcomes {
		side := WinnerProjectA
		if outcome.Winner == outcome.ProjectB {
			side = WinnerProjectB
		}
		row := []string{outcome.ProjectA, outcome.ProjectB, side, outcome.Winner}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteComparisonsFile writes judged outcomes to the named CSV file.
func WriteComparisonsFile(path string, outcomes []domain.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteComparisons(f, outcomes); err != nil {
		return err
	}
	return f.Sync()
}
