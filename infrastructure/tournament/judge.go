package tournament

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/filfund/pairrank/internal/domain"
	"github.com/filfund/pairrank/internal/ports"
)

// Symbolic winner sides returned by the judge model. They match the
// column values the ingestion layer resolves.
const (
	WinnerProjectA = "project_a"
	WinnerProjectB = "project_b"
)

// Default judge parameters.
const (
	// DefaultJudgeMaxConcurrency is the default number of concurrent
	// judge calls.
	DefaultJudgeMaxConcurrency = 20
	// DefaultJudgeMaxTokens bounds the verdict length; verdicts are
	// short JSON objects plus brief reasoning.
	DefaultJudgeMaxTokens = 512
	// DefaultJudgeTemperature keeps verdicts deterministic.
	DefaultJudgeTemperature = 0.0
)

// Package-level validator instance for configuration and verdict
// validation.
var validate = validator.New()

// JudgeConfig defines the parameters for pairwise judging.
// All fields are validated during judge creation.
type JudgeConfig struct {
	// Question is the comparison criterion posed to the model, e.g.
	// "Which project has been more impactful for the ecosystem?".
	Question string `yaml:"question" json:"question" validate:"required,min=10"`

	// MaxConcurrency limits simultaneous judge calls so the provider is
	// not overwhelmed.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency" validate:"required,min=1,max=100"`

	// Temperature controls verdict randomness; keep low for consistency.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0,max=2"`

	// MaxTokens limits the verdict response length.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"required,min=50,max=4000"`
}

// DefaultJudgeConfig returns a JudgeConfig with sensible defaults.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		Question:       "Which project has been more impactful for Filecoin?",
		MaxConcurrency: DefaultJudgeMaxConcurrency,
		Temperature:    DefaultJudgeTemperature,
		MaxTokens:      DefaultJudgeMaxTokens,
	}
}

// judgeVerdict is the structured JSON response expected from the model.
type judgeVerdict struct {
	// Winner is the symbolic side the model selected.
	Winner string `json:"winner" validate:"required,oneof=project_a project_b"`

	// Confidence indicates how certain the model is (0.0-1.0).
	Confidence float64 `json:"confidence" validate:"min=0,max=1"`

	// Reasoning explains the verdict; informational only.
	Reasoning string `json:"reasoning"`
}

// Judge evaluates scheduled pairs by prompting an LLM with both project
// payloads and parsing a structured verdict. It is stateless across runs
// and safe for concurrent use.
type Judge struct {
	llmClient ports.LLMClient
	config    JudgeConfig
}

// NewJudge creates a Judge with the given LLM client and configuration.
// Returns an error if the client is missing or the configuration fails
// validation.
func NewJudge(llmClient ports.LLMClient, config JudgeConfig) (*Judge, error) {
	if llmClient == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Judge{llmClient: llmClient, config: config}, nil
}

// Run judges every scheduled pair, fanning out up to MaxConcurrency
// concurrent calls. Outcomes are returned in schedule order regardless
// of completion order, along with cumulative token/call usage. Any
// judging error aborts the run: a partial comparison set would bias the
// downstream fit.
func (j *Judge) Run(ctx context.Context, registry *Registry, pairs []Pair) ([]domain.Outcome, domain.Usage, error) {
	outcomes := make([]domain.Outcome, len(pairs))
	var tokens, calls atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.MaxConcurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			outcome, used, err := j.judgePair(gctx, registry, pair)
			if err != nil {
				return fmt.Errorf("judge pair (%s, %s): %w", pair.A, pair.B, err)
			}
			outcomes[i] = outcome
			tokens.Add(used)
			calls.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, domain.Usage{Tokens: tokens.Load(), Calls: calls.Load()}, err
	}
	return outcomes, domain.Usage{Tokens: tokens.Load(), Calls: calls.Load()}, nil
}

// judgePair evaluates a single pair and returns the resolved outcome and
// the tokens consumed.
func (j *Judge) judgePair(ctx context.Context, registry *Registry, pair Pair) (domain.Outcome, int64, error) {
	payloadA, ok := registry.Payload(pair.A)
	if !ok {
		return domain.Outcome{}, 0, fmt.Errorf("unknown project %q", pair.A)
	}
	payloadB, ok := registry.Payload(pair.B)
	if !ok {
		return domain.Outcome{}, 0, fmt.Errorf("unknown project %q", pair.B)
	}

	prompt, err := j.buildPrompt(payloadA, payloadB)
	if err != nil {
		return domain.Outcome{}, 0, err
	}

	options := map[string]any{
		"temperature": j.config.Temperature,
		"max_tokens":  j.config.MaxTokens,
	}
	if supportsJSONMode(j.llmClient) {
		options["response_format"] = map[string]string{"type": "json_object"}
	}

	response, tokensIn, tokensOut, err := j.llmClient.CompleteWithUsage(ctx, prompt, options)
	if err != nil {
		return domain.Outcome{}, 0, err
	}
	used := int64(tokensIn + tokensOut)

	verdict, err := j.parseVerdict(response)
	if err != nil {
		return domain.Outcome{}, used, err
	}

	winner := pair.A
	if verdict.Winner == WinnerProjectB {
		winner = pair.B
	}
	return domain.Outcome{ProjectA: pair.A, ProjectB: pair.B, Winner: winner}, used, nil
}

// buildPrompt formats both project payloads and the verdict instruction.
func (j *Judge) buildPrompt(payloadA, payloadB json.RawMessage) (string, error) {
	prettyA, err := indentJSON(payloadA)
	if err != nil {
		return "", fmt.Errorf("format project_a payload: %w", err)
	}
	prettyB, err := indentJSON(payloadB)
	if err != nil {
		return "", fmt.Errorf("format project_b payload: %w", err)
	}

	var b strings.Builder
	b.WriteString(j.config.Question)
	b.WriteString("\n<projects>\n<project_a>\n")
	b.WriteString(prettyA)
	b.WriteString("\n</project_a>\n<project_b>\n")
	b.WriteString(prettyB)
	b.WriteString("\n</project_b>\n</projects>\n\n")
	b.WriteString("IMPORTANT: You must respond with valid JSON in exactly this format:\n")
	b.WriteString(`{"winner": "project_a" or "project_b", "confidence": <0.0-1.0>, "reasoning": "<brief explanation>"}`)
	return b.String(), nil
}

// parseVerdict extracts and validates the structured verdict from the
// model response.
func (j *Judge) parseVerdict(response string) (judgeVerdict, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return judgeVerdict{}, fmt.Errorf("no valid JSON found in response (length: %d chars)", len(response))
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return judgeVerdict{}, fmt.Errorf("parse verdict JSON: %w", err)
	}
	if err := validate.Struct(verdict); err != nil {
		return judgeVerdict{}, fmt.Errorf("invalid verdict structure (winner: %q): %w", verdict.Winner, err)
	}
	return verdict, nil
}

// indentJSON pretty-prints a raw payload for prompt readability.
func indentJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// supportsJSONMode checks whether the client's model accepts a JSON
// response format. Providers without it still work via the prompt
// instruction plus extraction.
func supportsJSONMode(client ports.LLMClient) bool {
	return strings.Contains(strings.ToLower(client.GetModel()), "gpt")
}

// extractJSON pulls the first JSON object out of a response that may wrap
// it in markdown fences or surrounding prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		rest := response[idx+7:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return response[start : i+1]
				}
			}
		}
	}
	return ""
}
