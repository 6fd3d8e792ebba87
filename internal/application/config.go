// Package application wires the ranking pipeline together: configuration
// loading, stage construction, and end-to-end orchestration.
package application

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config is the complete configuration for a ranking run and, optionally,
// the tournament that produces its input comparisons. Every field has a
// default matching the production tuning, so an empty file is valid.
type Config struct {
	// Model configures the Bradley-Terry fitter.
	Model ModelConfig `yaml:"model" validate:"required"`

	// Allocation configures the power-law grant allocator.
	Allocation AllocationConfig `yaml:"allocation" validate:"required"`

	// Tournament configures comparison generation. It is unused by the
	// rank command, which only consumes a finished comparisons file.
	Tournament TournamentConfig `yaml:"tournament" validate:"required"`
}

// ModelConfig holds the Bradley-Terry convergence parameters.
type ModelConfig struct {
	// MaxIterations caps the number of MM rounds; a soft deadline, the
	// last computed vector is used when it is reached.
	MaxIterations int `yaml:"max_iterations" validate:"required,min=1"`

	// Tolerance is the maximum absolute per-entity change between
	// successive normalized rounds at which iteration stops.
	Tolerance float64 `yaml:"tolerance" validate:"required,gt=0"`
}

// AllocationConfig holds the power-law allocation policy.
type AllocationConfig struct {
	// Alpha is the power-law exponent applied to 1-based ranks.
	Alpha float64 `yaml:"alpha" validate:"required,gt=0"`

	// TopN is the allocation window; ranks beyond it receive 0.
	TopN int `yaml:"top_n" validate:"required,min=1"`

	// MinAllocation is the smallest grant worth awarding; rounded
	// allocations below it become 0.
	MinAllocation int64 `yaml:"min_allocation" validate:"min=0"`

	// MaxAllocation caps any single grant.
	MaxAllocation int64 `yaml:"max_allocation" validate:"required,min=1"`

	// Budget is the total pre-clamp allocation mass.
	Budget int64 `yaml:"budget" validate:"required,min=1"`
}

// TournamentConfig holds the comparison-generation parameters: pairing,
// judging concurrency, the LLM provider, and the judging budget.
type TournamentConfig struct {
	// MinAppearances is the minimum number of comparisons each project
	// must appear in before pairing stops.
	MinAppearances int `yaml:"min_appearances" validate:"required,min=1"`

	// Seed drives the pair scheduler's PRNG. Runs with the same seed and
	// roster produce the same schedule.
	Seed int64 `yaml:"seed"`

	// MaxConcurrency bounds simultaneous judge calls.
	MaxConcurrency int `yaml:"max_concurrency" validate:"required,min=1,max=100"`

	// Provider selects the LLM backend: anthropic, openai, or google.
	Provider string `yaml:"provider" validate:"required,oneof=anthropic openai google"`

	// Model names the provider model; empty selects the provider default.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the provider
	// API key. The key itself never appears in configuration files.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`

	// RequestsPerSecond paces judge calls; 0 disables rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`

	// Burst is the rate limiter's burst size.
	Burst int `yaml:"burst" validate:"min=0"`

	// Budget bounds total resource consumption for the judging run.
	Budget BudgetConfig `yaml:"budget"`
}

// BudgetConfig establishes resource consumption limits for a judging run
// to prevent runaway costs. Zero values mean unlimited.
type BudgetConfig struct {
	// MaxTokens limits total tokens consumed across all judge calls.
	MaxTokens int64 `yaml:"max_tokens" validate:"min=0"`

	// MaxCalls limits the number of judge API calls.
	MaxCalls int64 `yaml:"max_calls" validate:"min=0"`
}

// DefaultConfig returns the production defaults: 10000 MM iterations
// at 1e-10 tolerance, alpha 0.8 over the top 30 with a 510000 budget, and
// a seeded 10-appearance tournament judged 20 pairs at a time.
func DefaultConfig() Config {
	return Config{
		Model: ModelConfig{
			MaxIterations: 10_000,
			Tolerance:     1e-10,
		},
		Allocation: AllocationConfig{
			Alpha:         0.8,
			TopN:          30,
			MinAllocation: 500,
			MaxAllocation: 100_000,
			Budget:        510_000,
		},
		Tournament: TournamentConfig{
			MinAppearances: 10,
			Seed:           100,
			MaxConcurrency: 20,
			Provider:       "anthropic",
			APIKeyEnv:      "ANTHROPIC_API_KEY",
		},
	}
}

// LoadConfig reads the YAML configuration at path, overlaying it on the
// defaults and validating the result. An empty path returns the defaults
// unchanged.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
