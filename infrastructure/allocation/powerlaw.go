// Package allocation converts a ranked project list into a
// budget-constrained grant allocation using rank-indexed power-law decay.
package allocation

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/filfund/pairrank/internal/domain"
)

// Default allocation parameters.
const (
	DefaultAlpha         = 0.8
	DefaultTopN          = 30
	DefaultMinAllocation = 500
	DefaultMaxAllocation = 100_000
	DefaultBudget        = 510_000
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config defines the power-law allocation policy. Configuration is
// immutable after allocator creation.
type Config struct {
	// Alpha is the power-law exponent: the weight of the entity at
	// 1-based rank r is 1/r^alpha. Larger values concentrate the budget
	// on top ranks.
	Alpha float64 `yaml:"alpha" json:"alpha" validate:"required,gt=0"`

	// TopN is the size of the allocation window. Entities ranked beyond
	// TopN receive exactly 0, unconditionally.
	TopN int `yaml:"top_n" json:"top_n" validate:"required,min=1"`

	// MinAllocation is the smallest grant worth awarding. A rounded
	// allocation below this becomes 0 ("no award"), never a token amount.
	MinAllocation int64 `yaml:"min_allocation" json:"min_allocation" validate:"min=0"`

	// MaxAllocation caps any single grant.
	MaxAllocation int64 `yaml:"max_allocation" json:"max_allocation" validate:"required,min=1"`

	// Budget is the total mass distributed across the window before
	// rounding and clamping.
	Budget int64 `yaml:"budget" json:"budget" validate:"required,min=1"`
}

// DefaultConfig returns the standard allocation policy: alpha 0.8 over
// the top 30 ranks, 500 minimum, 100000 cap, 510000 budget.
func DefaultConfig() Config {
	return Config{
		Alpha:         DefaultAlpha,
		TopN:          DefaultTopN,
		MinAllocation: DefaultMinAllocation,
		MaxAllocation: DefaultMaxAllocation,
		Budget:        DefaultBudget,
	}
}

// Allocator maps ranks to integer grants under a fixed budget.
// It is stateless and safe for concurrent use.
type Allocator struct {
	config Config
}

// NewAllocator creates an Allocator with the given policy.
// Returns an error if the configuration fails validation or the cap is
// below the minimum award.
func NewAllocator(config Config) (*Allocator, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if config.MaxAllocation < config.MinAllocation {
		return nil, fmt.Errorf("max_allocation %d is below min_allocation %d",
			config.MaxAllocation, config.MinAllocation)
	}
	return &Allocator{config: config}, nil
}

// Allocate computes the grant for every ranked entity. Every entity in
// the input appears in the result; entities beyond the top-N window map
// to 0 explicitly rather than being omitted.
//
// The pre-round, pre-clamp allocations sum exactly to the budget. After
// rounding and clamping the realized total may diverge from it; that
// divergence is accepted policy, not rebalanced.
func (a *Allocator) Allocate(ranked []domain.RankedEntry) map[string]int64 {
	allocations := make(map[string]int64, len(ranked))

	window := ranked
	if len(window) > a.config.TopN {
		window = window[:a.config.TopN]
	}

	weights := make([]float64, len(window))
	var weightSum float64
	for i := range window {
		weights[i] = 1 / math.Pow(float64(i+1), a.config.Alpha)
		weightSum += weights[i]
	}
	if weightSum == 0 {
		// Unreachable with top_n >= 1; guards the division below.
		weightSum = 1
	}
	scale := float64(a.config.Budget) / weightSum

	for i, entry := range window {
		raw := scale * weights[i]
		alloc := int64(math.RoundToEven(raw))
		switch {
		case alloc < a.config.MinAllocation:
			allocations[entry.Project] = 0
		case alloc > a.config.MaxAllocation:
			allocations[entry.Project] = a.config.MaxAllocation
		default:
			allocations[entry.Project] = alloc
		}
	}

	for _, entry := range ranked[len(window):] {
		allocations[entry.Project] = 0
	}

	return allocations
}
