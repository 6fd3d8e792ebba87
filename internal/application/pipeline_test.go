package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filfund/pairrank/internal/domain"
)

func TestNewPipeline_Validation(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		pipeline, err := NewPipeline(DefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, pipeline)
	})

	t.Run("bad fitter config", func(t *testing.T) {
		config := DefaultConfig()
		config.Model.MaxIterations = 0

		_, err := NewPipeline(config)
		assert.Error(t, err)
	})

	t.Run("bad allocator config", func(t *testing.T) {
		config := DefaultConfig()
		config.Allocation.Budget = 0

		_, err := NewPipeline(config)
		assert.Error(t, err)
	})
}

func TestPipeline_Run(t *testing.T) {
	pipeline, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)

	outcomes := []domain.Outcome{
		{ProjectA: "alpha", ProjectB: "beta", Winner: "alpha"},
		{ProjectA: "alpha", ProjectB: "beta", Winner: "beta"},
		{ProjectA: "alpha", ProjectB: "gamma", Winner: "alpha"},
	}

	result, err := pipeline.Run(context.Background(), outcomes)
	require.NoError(t, err)

	// alpha (2 wins) ranks above beta (1 win) ranks above gamma (0 wins).
	require.Len(t, result.Ranked, 3)
	assert.Equal(t, "alpha", result.Ranked[0].Project)
	assert.Equal(t, "beta", result.Ranked[1].Project)
	assert.Equal(t, "gamma", result.Ranked[2].Project)

	var sum float64
	for _, s := range result.Scores {
		assert.Greater(t, s, 0.0)
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	assert.Equal(t, domain.Record{Wins: 2, Total: 3}, result.Records["alpha"])
	assert.Equal(t, domain.Record{Wins: 1, Total: 2}, result.Records["beta"])
	assert.Equal(t, domain.Record{Wins: 0, Total: 1}, result.Records["gamma"])

	// Three entities under the full default budget all hit the per-grant
	// cap.
	assert.Equal(t, int64(100_000), result.Allocations["alpha"])
	assert.Equal(t, int64(100_000), result.Allocations["beta"])
	assert.Equal(t, int64(100_000), result.Allocations["gamma"])
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	pipeline, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	pipeline, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)

	outcomes := []domain.Outcome{
		{ProjectA: "alpha", ProjectB: "beta", Winner: "alpha"},
		{ProjectA: "beta", ProjectB: "gamma", Winner: "beta"},
		{ProjectA: "gamma", ProjectB: "alpha", Winner: "alpha"},
	}

	first, err := pipeline.Run(context.Background(), outcomes)
	require.NoError(t, err)
	second, err := pipeline.Run(context.Background(), outcomes)
	require.NoError(t, err)

	assert.Equal(t, first.Ranked, second.Ranked)
	assert.Equal(t, first.Allocations, second.Allocations)
}

func TestPipeline_RunFile(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "comparisons.csv")
	input := strings.Join([]string{
		"project_a,project_b,winner",
		"alpha,beta,project_a",
		"alpha,beta,project_b",
		"alpha,gamma,project_a",
	}, "\n")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o644))

	pipeline, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pipeline.RunFile(context.Background(), inputPath, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t,
		[]string{"rank", "project", "score", "rating_log", "wins", "total", "winrate", "allocation_fil"},
		records[0])
	assert.Equal(t, "alpha", records[1][1])
	assert.Equal(t, "beta", records[2][1])
	assert.Equal(t, "gamma", records[3][1])
	assert.Equal(t, "100000", records[1][7])
}

func TestPipeline_RunFile_MalformedInput(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "comparisons.csv")
	input := strings.Join([]string{
		"project_a,project_b,winner_name",
		"alpha,beta,gamma",
	}, "\n")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o644))

	pipeline, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = pipeline.RunFile(context.Background(), inputPath, &buf)
	require.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.Zero(t, buf.Len())
}
