package embeddings

import "errors"

var (
	// ErrInvalidInput means empty or whitespace-only text was submitted.
	// Caller-correctable; never retried.
	ErrInvalidInput = errors.New("text cannot be empty")

	// ErrProviderExhausted means every retry attempt for a single
	// embedding call failed. It wraps the last underlying error.
	ErrProviderExhausted = errors.New("embedding attempts exhausted")
)
