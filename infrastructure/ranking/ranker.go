package ranking

import (
	"sort"

	"github.com/filfund/pairrank/internal/domain"
)

// Rank produces a total ordering of the fitted strengths: score
// descending, with lexicographic name order breaking exact ties so that
// no two distinct entities ever compare as equal. The input map is not
// modified.
func Rank(scores map[string]float64) []domain.RankedEntry {
	ranked := make([]domain.RankedEntry, 0, len(scores))
	for name, score := range scores {
		ranked = append(ranked, domain.RankedEntry{Project: name, Score: score})
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		return ranked[a].Project < ranked[b].Project
	})

	return ranked
}
