package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while turning raw comparisons into
// a ranked allocation report. All of them are fatal: the pipeline either
// produces a complete report or none at all.
var (
	// ErrEmptyInput indicates that ingestion produced zero valid outcomes.
	ErrEmptyInput = errors.New("no comparison data found")

	// ErrMalformedRecord indicates that a comparison row's winner could
	// not be resolved to one of its two participants.
	ErrMalformedRecord = errors.New("malformed comparison record")

	// ErrDegenerateModel indicates that the Bradley-Terry update produced
	// a non-positive normalization sum and the fit cannot continue.
	ErrDegenerateModel = errors.New("degenerate model: cannot normalize scores")

	// ErrInvalidScore indicates that a fitted score was non-positive at
	// report time, which violates the fitter's epsilon-floor invariant.
	ErrInvalidScore = errors.New("invalid non-positive score")
)

// MalformedRecordError describes a comparison row whose winner field is
// missing, unrecognized, or names neither participant. It carries enough
// context to locate and correct the offending row.
type MalformedRecordError struct {
	// Line is the 1-based line number of the row in the source file,
	// counting the header.
	Line int

	// ProjectA and ProjectB are the row's participants.
	ProjectA string
	ProjectB string

	// Winner is the unresolvable winner value, empty when absent.
	Winner string

	// Suggestion is the participant closest to Winner by edit distance,
	// empty when no plausible candidate exists.
	Suggestion string
}

// Error implements the error interface for MalformedRecordError.
func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("line %d: winner %q is not one of (%q, %q)",
		e.Line, e.Winner, e.ProjectA, e.ProjectB)
	if e.Winner == "" {
		msg = fmt.Sprintf("line %d: no winner recorded for (%q, %q)",
			e.Line, e.ProjectA, e.ProjectB)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns ErrMalformedRecord, supporting errors.Is checks.
func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// InvalidScoreError reports a fitted score that cannot be emitted because
// its logarithm is undefined. Seeing this error means the fitter's
// positivity invariant was violated upstream.
type InvalidScoreError struct {
	// Project is the entity whose score is invalid.
	Project string

	// Score is the offending non-positive value.
	Score float64
}

// Error implements the error interface for InvalidScoreError.
func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("project %q has non-positive score %g", e.Project, e.Score)
}

// Unwrap returns ErrInvalidScore, supporting errors.Is checks.
func (e *InvalidScoreError) Unwrap() error { return ErrInvalidScore }
