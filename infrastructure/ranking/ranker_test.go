package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filfund/pairrank/internal/domain"
)

func TestRank_OrdersByScoreDescending(t *testing.T) {
	ranked := Rank(map[string]float64{
		"alpha": 0.2,
		"beta":  0.5,
		"gamma": 0.3,
	})

	assert.Equal(t, []domain.RankedEntry{
		{Project: "beta", Score: 0.5},
		{Project: "gamma", Score: 0.3},
		{Project: "alpha", Score: 0.2},
	}, ranked)
}

func TestRank_TiesBreakByName(t *testing.T) {
	// Exact score ties fall back to lexicographic name order so the
	// ranking is a total order and runs are reproducible.
	ranked := Rank(map[string]float64{
		"delta": 0.25,
		"alpha": 0.25,
		"gamma": 0.25,
		"beta":  0.25,
	})

	names := make([]string, len(ranked))
	for i, entry := range ranked {
		names[i] = entry.Project
	}
	assert.Equal(t, []string{"alpha", "beta", "delta", "gamma"}, names)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank(map[string]float64{}))
}
