package application

import (
	"context"
	"fmt"
	"io"

	"github.com/filfund/pairrank/infrastructure/allocation"
	"github.com/filfund/pairrank/infrastructure/ingest"
	"github.com/filfund/pairrank/infrastructure/ranking"
	"github.com/filfund/pairrank/infrastructure/report"
	"github.com/filfund/pairrank/internal/domain"
)

// Pipeline executes the full ranking batch: win-matrix aggregation,
// Bradley-Terry fitting, ranking, and allocation. Each stage consumes an
// immutable snapshot of its input and produces a new structure; a
// Pipeline holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	fitter    *ranking.Fitter
	allocator *allocation.Allocator
}

// Result is the complete output of one pipeline run.
type Result struct {
	// Ranked is the total ordering of entities by fitted strength.
	Ranked []domain.RankedEntry

	// Scores holds the normalized strengths keyed by entity name.
	Scores map[string]float64

	// Records holds per-entity win/loss records keyed by entity name.
	Records map[string]domain.Record

	// Allocations holds the integer grant per entity; entities outside
	// the allocation window are present with value 0.
	Allocations map[string]int64
}

// NewPipeline constructs a Pipeline from configuration. Stage
// configurations are validated by their constructors.
func NewPipeline(config Config) (*Pipeline, error) {
	fitter, err := ranking.NewFitter(ranking.FitterConfig{
		MaxIterations: config.Model.MaxIterations,
		Tolerance:     config.Model.Tolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("create fitter: %w", err)
	}

	allocator, err := allocation.NewAllocator(allocation.Config{
		Alpha:         config.Allocation.Alpha,
		TopN:          config.Allocation.TopN,
		MinAllocation: config.Allocation.MinAllocation,
		MaxAllocation: config.Allocation.MaxAllocation,
		Budget:        config.Allocation.Budget,
	})
	if err != nil {
		return nil, fmt.Errorf("create allocator: %w", err)
	}

	return &Pipeline{fitter: fitter, allocator: allocator}, nil
}

// Run executes the batch over an already-validated outcome list.
// It is a pure function of its input: the same outcomes always produce
// the same result.
func (p *Pipeline) Run(ctx context.Context, outcomes []domain.Outcome) (*Result, error) {
	if len(outcomes) == 0 {
		return nil, domain.ErrEmptyInput
	}

	matrix := ranking.BuildWinMatrix(outcomes)

	scores, err := p.fitter.Fit(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("fit bradley-terry model: %w", err)
	}

	ranked := ranking.Rank(scores)
	allocations := p.allocator.Allocate(ranked)

	return &Result{
		Ranked:      ranked,
		Scores:      scores,
		Records:     matrix.Records(),
		Allocations: allocations,
	}, nil
}

// RunFile ingests the comparisons CSV at inputPath, executes the batch,
// and writes the leaderboard CSV to w. Any stage error aborts the run
// before a single report row is written.
func (p *Pipeline) RunFile(ctx context.Context, inputPath string, w io.Writer) error {
	outcomes, err := ingest.ReadFile(inputPath)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, outcomes)
	if err != nil {
		return err
	}

	return report.Write(w, result.Ranked, result.Records, result.Allocations)
}
