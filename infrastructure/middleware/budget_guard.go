// Package middleware provides cross-cutting concerns for the judging
// pipeline: budget enforcement around LLM usage plus the observability
// implementations (OpenTelemetry, Prometheus) that watch it.
package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/filfund/pairrank/infrastructure/llm"
	"github.com/filfund/pairrank/internal/domain"
)

// Budget defines resource consumption limits for a judging run.
// It specifies maximum allowed tokens and API calls to prevent runaway costs.
type Budget struct {
	// MaxTokens limits the total number of tokens that can be consumed.
	// Zero means unlimited token usage.
	MaxTokens int64

	// MaxCalls limits the total number of API calls that can be made.
	// Zero means unlimited API calls.
	MaxCalls int64
}

// BudgetObserver provides observability hooks for budget operations.
// Implementations can add tracing, metrics, and logging without
// coupling observability concerns to core budget logic.
//
// One observer instance is shared by every request flowing through a
// guard, so implementations must not keep per-request state on the
// struct. Per-request values (such as an active span) travel in the
// context PreCheck returns, which the guard threads through the request
// and into PostCheck.
type BudgetObserver interface {
	// PreCheck is called before budget limit validation. The returned
	// context is used for the request and the matching PostCheck.
	PreCheck(ctx context.Context, usage domain.Usage, budget Budget) context.Context

	// PostCheck is called after the request with usage and timing information.
	PostCheck(ctx context.Context, usage domain.Usage, budget Budget, elapsed time.Duration, err error)
}

// BudgetGuard enforces token and API call limits across a judging run.
// It accumulates usage from every request flowing through the client's
// middleware chain and rejects requests once a limit is reached.
// Concurrent judge calls share one guard, so usage is mutex-protected.
type BudgetGuard struct {
	// budget holds the immutable budget limits for this guard.
	budget Budget

	// observer provides optional observability hooks for tracing and metrics.
	observer BudgetObserver

	mu    sync.Mutex
	usage domain.Usage
}

// NewBudgetGuard creates a BudgetGuard with the specified limits and an
// optional observer. Returns an error for negative limits.
func NewBudgetGuard(budget Budget, observer BudgetObserver) (*BudgetGuard, error) {
	if budget.MaxTokens < 0 {
		return nil, fmt.Errorf("budget guard: max_tokens cannot be negative, got %d", budget.MaxTokens)
	}
	if budget.MaxCalls < 0 {
		return nil, fmt.Errorf("budget guard: max_calls cannot be negative, got %d", budget.MaxCalls)
	}
	return &BudgetGuard{budget: budget, observer: observer}, nil
}

// Usage returns the consumption accumulated so far.
func (bg *BudgetGuard) Usage() domain.Usage {
	bg.mu.Lock()
	defer bg.mu.Unlock()
	return bg.usage
}

// Middleware returns the guard as LLM client middleware. Install it
// outermost so rejected requests never reach rate limiting or retries.
func (bg *BudgetGuard) Middleware() llm.Middleware {
	return func(next llm.CoreLLM) llm.CoreLLM {
		return &guardedLLM{guard: bg, next: next}
	}
}

// checkLimits verifies that the given usage is within configured limits.
// It returns a BudgetExceededError if any limit is violated.
func (bg *BudgetGuard) checkLimits(usage domain.Usage) error {
	if bg.budget.MaxTokens > 0 && usage.Tokens > bg.budget.MaxTokens {
		return domain.NewBudgetExceededError("tokens", bg.budget.MaxTokens, usage.Tokens)
	}
	if bg.budget.MaxCalls > 0 && usage.Calls > bg.budget.MaxCalls {
		return domain.NewBudgetExceededError("calls", bg.budget.MaxCalls, usage.Calls)
	}
	return nil
}

// guardedLLM is the chain link installed by BudgetGuard.Middleware.
type guardedLLM struct {
	guard *BudgetGuard
	next  llm.CoreLLM
}

// DoRequest performs budget enforcement around the wrapped request.
// The pre-check counts the request itself, so a run at its call limit
// fails before spending tokens; the post-check catches token overruns
// that only become known from the provider's usage report.
func (g *guardedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	bg := g.guard

	bg.mu.Lock()
	pending := bg.usage
	pending.Calls++
	if err := bg.checkLimits(pending); err != nil {
		bg.mu.Unlock()
		return "", 0, 0, err
	}
	bg.mu.Unlock()

	if bg.observer != nil {
		ctx = bg.observer.PreCheck(ctx, pending, bg.budget)
	}

	start := time.Now()
	response, tokensIn, tokensOut, err := g.next.DoRequest(ctx, prompt, opts)
	elapsed := time.Since(start)

	bg.mu.Lock()
	bg.usage = bg.usage.Add(int64(tokensIn + tokensOut))
	final := bg.usage
	bg.mu.Unlock()

	if bg.observer != nil {
		bg.observer.PostCheck(ctx, final, bg.budget, elapsed, err)
	}

	if err == nil {
		if budgetErr := bg.checkLimits(final); budgetErr != nil {
			return response, tokensIn, tokensOut, budgetErr
		}
	}

	return response, tokensIn, tokensOut, err
}

// GetModel returns the model name from the wrapped implementation.
func (g *guardedLLM) GetModel() string { return g.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (g *guardedLLM) SetModel(model string) { g.next.SetModel(model) }
