package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/filfund/pairrank/internal/domain"
)

// ZeroWinEpsilon is the strength assigned to entities with no observed
// wins. The MM update would collapse such entities to exactly zero, which
// breaks both normalization and the log-rating at report time; the floor
// keeps them strictly positive while ranking many orders of magnitude
// below any entity with a win.
const ZeroWinEpsilon = 1e-12

// Default fitter parameters.
const (
	DefaultMaxIterations = 10_000
	DefaultTolerance     = 1e-10
)

// FitterConfig defines the convergence parameters for the Bradley-Terry
// fitter. Configuration is immutable after fitter creation.
type FitterConfig struct {
	// MaxIterations caps the number of MM rounds. Reaching the cap
	// without convergence is a soft deadline, not an error: the last
	// computed vector is returned.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations" validate:"required,min=1"`

	// Tolerance is the convergence threshold: iteration stops once the
	// maximum absolute per-entity change between successive normalized
	// rounds falls below it.
	Tolerance float64 `yaml:"tolerance" json:"tolerance" validate:"required,gt=0"`
}

// DefaultFitterConfig returns a FitterConfig with the default tuning:
// 10000 iterations and a 1e-10 convergence tolerance.
func DefaultFitterConfig() FitterConfig {
	return FitterConfig{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Fitter estimates Bradley-Terry strengths from a WinMatrix using the
// standard minorization-maximization fixed-point update. For entity i
// with strength p_i the per-round update is
//
//	new_p_i = wins_i / Σ_{j≠i, n_ij>0} n_ij / (p_i + p_j)
//
// where n_ij is the number of decided matches between i and j. After each
// round the vector is projected back onto the probability simplex; the
// unnormalized update is scale-invariant and drifts without it.
//
// The fitter is stateless and safe for concurrent use.
type Fitter struct {
	config FitterConfig
}

// NewFitter creates a Fitter with the given convergence parameters.
// Returns an error if the configuration fails validation.
func NewFitter(config FitterConfig) (*Fitter, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Fitter{config: config}, nil
}

// Fit runs the MM iteration from a uniform start and returns normalized
// strengths keyed by entity name. Every entity registered in the matrix
// receives a strictly positive score; scores sum to 1 within tolerance.
//
// Returns domain.ErrDegenerateModel if an update round produces a
// non-positive normalization sum. The context is checked once per round
// so a caller can abandon a pathological fit.
func (f *Fitter) Fit(ctx context.Context, m *WinMatrix) (map[string]float64, error) {
	return f.FitFrom(ctx, m, nil)
}

// FitFrom runs the MM iteration seeded with the given initial strengths.
// Entities missing from initial start at 1.0, so FitFrom(ctx, m, nil) is
// a uniform start. Re-seeding with a converged vector reproduces it: the
// normalized update is a fixed point at the maximum-likelihood estimate.
func (f *Fitter) FitFrom(ctx context.Context, m *WinMatrix, initial map[string]float64) (map[string]float64, error) {
	if m.Len() == 0 {
		return nil, ErrEmptyMatrix
	}

	// Iterate entities in name order so the floating-point accumulation
	// order, and therefore the result, is reproducible across runs.
	order := make([]int, m.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return m.Name(order[a]) < m.Name(order[b]) })

	scores := make([]float64, m.Len())
	for i := range scores {
		scores[i] = 1.0
	}
	for name, s := range initial {
		if i, ok := m.Index(name); ok {
			scores[i] = s
		}
	}

	next := make([]float64, m.Len())
	for iter := 0; iter < f.config.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bradley-terry fit canceled after %d rounds: %w", iter, err)
		}

		for _, i := range order {
			wins := m.TotalWins(i)
			if wins == 0 {
				next[i] = ZeroWinEpsilon
				continue
			}

			var denom float64
			for _, j := range order {
				if i == j {
					continue
				}
				n := m.Matches(i, j)
				if n == 0 {
					continue
				}
				denom += float64(n) / (scores[i] + scores[j])
			}

			if denom > 0 {
				next[i] = float64(wins) / denom
			} else {
				next[i] = ZeroWinEpsilon
			}
		}

		var total float64
		for _, v := range next {
			total += v
		}
		if total <= 0 || math.IsNaN(total) {
			return nil, fmt.Errorf("round %d: sum %g: %w", iter, total, domain.ErrDegenerateModel)
		}

		var delta float64
		for i := range next {
			next[i] /= total
			if d := math.Abs(next[i] - scores[i]); d > delta {
				delta = d
			}
		}

		scores, next = next, scores
		if delta < f.config.Tolerance {
			break
		}
	}

	out := make(map[string]float64, m.Len())
	for i, s := range scores {
		out[m.Name(i)] = s
	}
	return out, nil
}
