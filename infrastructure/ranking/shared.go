// Package ranking implements the statistical core of the pipeline:
// aggregating pairwise outcomes into a win matrix, fitting a
// Bradley-Terry strength model via minorization-maximization, and
// deriving a deterministic total ordering from the fitted strengths.
package ranking

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Common errors returned by ranking components.
var (
	// ErrEmptyMatrix is returned when a fit is requested on a win matrix
	// with no registered entities.
	ErrEmptyMatrix = errors.New("win matrix has no entities")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
