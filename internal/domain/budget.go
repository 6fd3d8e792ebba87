package domain

import "fmt"

// Usage tracks cumulative resource consumption during a judging run.
// The zero value means nothing has been consumed yet.
type Usage struct {
	// Tokens is the cumulative token count across all judge calls.
	Tokens int64 `json:"tokens"`

	// Calls is the number of judge API calls made so far.
	Calls int64 `json:"calls"`
}

// Add returns the usage after one more call consuming the given tokens.
func (u Usage) Add(tokens int64) Usage {
	return Usage{Tokens: u.Tokens + tokens, Calls: u.Calls + 1}
}

// BudgetExceededError indicates that a judging run hit one of its
// configured resource limits and was stopped before completion.
type BudgetExceededError struct {
	// LimitType identifies the exhausted resource ("tokens" or "calls").
	LimitType string

	// Limit is the configured maximum for the resource.
	Limit int64

	// Used is the consumption observed when the limit was hit.
	Used int64
}

// Error implements the error interface for BudgetExceededError.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("judging budget exceeded: %s limit %d, used %d",
		e.LimitType, e.Limit, e.Used)
}

// NewBudgetExceededError creates a BudgetExceededError for the given
// resource type and observed usage.
func NewBudgetExceededError(limitType string, limit, used int64) *BudgetExceededError {
	return &BudgetExceededError{LimitType: limitType, Limit: limit, Used: used}
}
