package models

import "errors"

// Error taxonomy for the recommendation engine. Cold start and low
// confidence are deliberately not errors; they are flags on
// RecommendationResult.
var (
	// ErrUnknownUser means the user id has no ratings in the table.
	ErrUnknownUser = errors.New("user not found in rating table")

	// ErrUnknownProduct means the product id has no ratings in the table.
	ErrUnknownProduct = errors.New("product not found in rating table")

	// ErrInvalidConfiguration marks an unsupported parameter value, such
	// as an unrecognized normalization method name.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoSignal means a rating prediction had no overlapping similarity
	// evidence to work with.
	ErrNoSignal = errors.New("no prediction signal")

	// ErrEmptyTable means an operation requires at least one rating.
	ErrEmptyTable = errors.New("rating table is empty")
)
