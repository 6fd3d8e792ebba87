package allocation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filfund/pairrank/internal/domain"
)

func ranked(names ...string) []domain.RankedEntry {
	entries := make([]domain.RankedEntry, len(names))
	for i, name := range names {
		entries[i] = domain.RankedEntry{Project: name, Score: 1.0 / float64(i+2)}
	}
	return entries
}

func TestNewAllocator_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "zero alpha", mutate: func(c *Config) { c.Alpha = 0 }, wantErr: true},
		{name: "zero top_n", mutate: func(c *Config) { c.TopN = 0 }, wantErr: true},
		{name: "zero budget", mutate: func(c *Config) { c.Budget = 0 }, wantErr: true},
		{name: "cap below minimum", mutate: func(c *Config) { c.MaxAllocation = 100; c.MinAllocation = 500 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			allocator, err := NewAllocator(config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, allocator)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, allocator)
		})
	}
}

func TestAllocator_Allocate_SumsToBudgetBeforeClamping(t *testing.T) {
	// With alpha 1 over two ranks the weights are 1 and 1/2, so the
	// rounded allocations are 667 and 333 and realize the budget exactly.
	allocator, err := NewAllocator(Config{
		Alpha:         1.0,
		TopN:          2,
		MinAllocation: 1,
		MaxAllocation: 1_000_000,
		Budget:        1000,
	})
	require.NoError(t, err)

	allocations := allocator.Allocate(ranked("alpha", "beta"))

	assert.Equal(t, int64(667), allocations["alpha"])
	assert.Equal(t, int64(333), allocations["beta"])
}

func TestAllocator_Allocate_MonotoneNonIncreasing(t *testing.T) {
	allocator, err := NewAllocator(Config{
		Alpha:         0.8,
		TopN:          10,
		MinAllocation: 1,
		MaxAllocation: 1_000_000,
		Budget:        100_000,
	})
	require.NoError(t, err)

	entries := ranked("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	allocations := allocator.Allocate(entries)

	for i := 1; i < len(entries); i++ {
		prev := allocations[entries[i-1].Project]
		cur := allocations[entries[i].Project]
		assert.GreaterOrEqual(t, prev, cur,
			"allocation increased from rank %d to %d", i, i+1)
	}
}

func TestAllocator_Allocate_MinimumBecomesZero(t *testing.T) {
	// Allocations that round below the minimum award drop to zero
	// outright, never a token amount.
	allocator, err := NewAllocator(Config{
		Alpha:         0.8,
		TopN:          3,
		MinAllocation: 400,
		MaxAllocation: 1_000_000,
		Budget:        1000,
	})
	require.NoError(t, err)

	allocations := allocator.Allocate(ranked("alpha", "beta", "gamma"))

	assert.Equal(t, int64(503), allocations["alpha"])
	assert.Equal(t, int64(0), allocations["beta"])
	assert.Equal(t, int64(0), allocations["gamma"])
}

func TestAllocator_Allocate_CapsAtMaximum(t *testing.T) {
	allocator, err := NewAllocator(Config{
		Alpha:         0.8,
		TopN:          3,
		MinAllocation: 500,
		MaxAllocation: 100_000,
		Budget:        510_000,
	})
	require.NoError(t, err)

	allocations := allocator.Allocate(ranked("alpha", "beta", "gamma"))

	// A three-entity window under the full budget pushes every raw
	// allocation past the cap.
	assert.Equal(t, int64(100_000), allocations["alpha"])
	assert.Equal(t, int64(100_000), allocations["beta"])
	assert.Equal(t, int64(100_000), allocations["gamma"])
}

func TestAllocator_Allocate_BeyondWindowIsZero(t *testing.T) {
	allocator, err := NewAllocator(Config{
		Alpha:         0.8,
		TopN:          1,
		MinAllocation: 1,
		MaxAllocation: 1_000_000,
		Budget:        1000,
	})
	require.NoError(t, err)

	allocations := allocator.Allocate(ranked("alpha", "beta", "gamma"))

	require.Len(t, allocations, 3)
	assert.Equal(t, int64(1000), allocations["alpha"])
	assert.Equal(t, int64(0), allocations["beta"])
	assert.Equal(t, int64(0), allocations["gamma"])
}

func TestAllocator_Allocate_WindowSmallerThanTopN(t *testing.T) {
	allocator, err := NewAllocator(DefaultConfig())
	require.NoError(t, err)

	allocations := allocator.Allocate(ranked("alpha", "beta"))

	assert.Len(t, allocations, 2)
	assert.Equal(t, int64(DefaultMaxAllocation), allocations["alpha"])
	assert.Equal(t, int64(DefaultMaxAllocation), allocations["beta"])
}

func TestAllocator_Allocate_Empty(t *testing.T) {
	allocator, err := NewAllocator(DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, allocator.Allocate(nil))
}

func TestAllocator_Allocate_WeightsFollowPowerLaw(t *testing.T) {
	// Without rounding or clamping in play, the ratio between rank 1 and
	// rank r approaches r^alpha.
	const alpha = 0.8
	allocator, err := NewAllocator(Config{
		Alpha:         alpha,
		TopN:          4,
		MinAllocation: 1,
		MaxAllocation: 100_000_000,
		Budget:        10_000_000,
	})
	require.NoError(t, err)

	entries := ranked("a", "b", "c", "d")
	allocations := allocator.Allocate(entries)

	first := float64(allocations["a"])
	for r := 2; r <= 4; r++ {
		got := first / float64(allocations[entries[r-1].Project])
		want := math.Pow(float64(r), alpha)
		assert.InDelta(t, want, got, 0.001, "ratio at rank %d", r)
	}
}
