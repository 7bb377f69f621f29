package similarity

import "errors"

var (
	// ErrDimensionMismatch means the two vectors have different lengths.
	// Signals a wiring bug; never retried.
	ErrDimensionMismatch = errors.New("vector dimensions don't match")

	// ErrEmptyReference means the reference vector is empty or absent.
	ErrEmptyReference = errors.New("reference vector cannot be empty")
)
