package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache memoizes embedding vectors keyed by model and input text, so
// repeated matches against the same job descriptions skip provider calls.
type Cache interface {
	// GetVector retrieves a cached vector by key.
	// Returns nil if not found.
	GetVector(ctx context.Context, key string) ([]float32, error)

	// SetVector stores a vector with TTL.
	SetVector(ctx context.Context, key string, vector []float32, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// GenerateKey derives a stable cache key from the embedding model and the
// exact input text.
func GenerateKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
