package tournament

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterOf(n int) []string {
	roster := make([]string, n)
	for i := range roster {
		roster[i] = fmt.Sprintf("project-%02d", i)
	}
	return roster
}

func TestGeneratePairs_Deterministic(t *testing.T) {
	config := ScheduleConfig{MinAppearances: 5, Seed: 100}
	roster := rosterOf(9)

	first, err := GeneratePairs(roster, config)
	require.NoError(t, err)
	second, err := GeneratePairs(roster, config)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed and roster must give the same schedule")
}

func TestGeneratePairs_SeedChangesSchedule(t *testing.T) {
	roster := rosterOf(9)

	first, err := GeneratePairs(roster, ScheduleConfig{MinAppearances: 5, Seed: 100})
	require.NoError(t, err)
	second, err := GeneratePairs(roster, ScheduleConfig{MinAppearances: 5, Seed: 101})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestGeneratePairs_MinAppearances(t *testing.T) {
	tests := []struct {
		name           string
		rosterSize     int
		minAppearances int
	}{
		{name: "even roster", rosterSize: 8, minAppearances: 10},
		{name: "odd roster", rosterSize: 9, minAppearances: 10},
		{name: "two projects", rosterSize: 2, minAppearances: 3},
		{name: "single appearance", rosterSize: 5, minAppearances: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := rosterOf(tt.rosterSize)
			pairs, err := GeneratePairs(roster, ScheduleConfig{
				MinAppearances: tt.minAppearances,
				Seed:           100,
			})
			require.NoError(t, err)

			counts := make(map[string]int)
			for _, pair := range pairs {
				counts[pair.A]++
				counts[pair.B]++
			}

			for _, name := range roster {
				assert.GreaterOrEqual(t, counts[name], tt.minAppearances,
					"%s appeared too few times", name)
			}
		})
	}
}

func TestGeneratePairs_WellFormed(t *testing.T) {
	pairs, err := GeneratePairs(rosterOf(7), ScheduleConfig{MinAppearances: 4, Seed: 42})
	require.NoError(t, err)

	for _, pair := range pairs {
		assert.NotEmpty(t, pair.A, "bye slot leaked into the schedule")
		assert.NotEmpty(t, pair.B, "bye slot leaked into the schedule")
		assert.NotEqual(t, pair.A, pair.B, "self-pairing")
	}
}

func TestGeneratePairs_SidesVary(t *testing.T) {
	// With randomized side assignment, a project should not always land
	// on the same side of its pairs.
	pairs, err := GeneratePairs(rosterOf(6), ScheduleConfig{MinAppearances: 20, Seed: 7})
	require.NoError(t, err)

	asA := make(map[string]int)
	asB := make(map[string]int)
	for _, pair := range pairs {
		asA[pair.A]++
		asB[pair.B]++
	}

	for _, name := range rosterOf(6) {
		assert.Positive(t, asA[name], "%s never appeared as side A", name)
		assert.Positive(t, asB[name], "%s never appeared as side B", name)
	}
}

func TestGeneratePairs_TooFewProjects(t *testing.T) {
	for _, roster := range [][]string{nil, {"alpha"}} {
		_, err := GeneratePairs(roster, ScheduleConfig{MinAppearances: 1, Seed: 100})
		assert.ErrorIs(t, err, ErrTooFewProjects)
	}
}
