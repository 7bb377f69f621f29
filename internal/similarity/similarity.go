// Package similarity scores candidate vectors against a reference vector
// with cosine similarity bounded to [0, 1]. Negative correlation scores
// the same as zero correlation; ranking only cares about closeness.
package similarity

import (
	"fmt"
	"math"

	"job-match/internal/embeddings"
)

// zeroTolerance treats vectors with negligible magnitude as zero vectors,
// for which cosine similarity is undefined and defined here as 0.0.
const zeroTolerance = 1e-9

// Cosine computes the cosine similarity between a and b, clamped into
// [0, 1]. Empty or all-zero vectors score 0.0; differing lengths return
// ErrDimensionMismatch naming both.
func Cosine(a, b embeddings.Vector) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	magA, magB := math.Sqrt(normA), math.Sqrt(normB)
	if magA < zeroTolerance || magB < zeroTolerance {
		return 0, nil
	}

	// Clamp to absorb floating-point overshoot and collapse negative
	// correlation to zero.
	sim := dot / (magA * magB)
	return math.Min(1, math.Max(0, sim)), nil
}

// ScoreAll computes one score per candidate in input order. Failed
// candidate embeddings score 0.0 so one missing vector never aborts
// ranking of the rest. An empty reference returns ErrEmptyReference.
func ScoreAll(ref embeddings.Vector, candidates []embeddings.Result) ([]float64, error) {
	if len(ref) == 0 {
		return nil, ErrEmptyReference
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		if c.Failed {
			continue
		}
		score, err := Cosine(ref, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}
