package similarity

import (
	"errors"
	"math"
	"strings"
	"testing"

	"job-match/internal/embeddings"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     embeddings.Vector
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        embeddings.Vector{1, 0, 0},
			b:        embeddings.Vector{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        embeddings.Vector{1, 0, 0},
			b:        embeddings.Vector{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors clamp to zero",
			a:        embeddings.Vector{1, 0},
			b:        embeddings.Vector{-1, 0},
			expected: 0.0,
		},
		{
			name:     "empty vectors",
			a:        embeddings.Vector{},
			b:        embeddings.Vector{},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        embeddings.Vector{1, 2, 3},
			b:        embeddings.Vector{0, 0, 0},
			expected: 0.0,
		},
		{
			name:     "normalized vectors 45 degrees",
			a:        embeddings.Vector{1, 0},
			b:        embeddings.Vector{0.707, 0.707},
			expected: 0.707,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("got %f, want %f", result, tt.expected)
			}
		})
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	vectors := []embeddings.Vector{
		{1, 2, 3},
		{0.5, 0.5},
		{-1, 4, 2, -7},
	}
	for _, v := range vectors {
		sim, err := Cosine(v, v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(sim-1.0) > 1e-6 {
			t.Errorf("self similarity of %v = %f, want 1.0", v, sim)
		}
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine(embeddings.Vector{1, 2}, embeddings.Vector{1, 2, 3})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	// The error names both lengths for diagnosis.
	if !strings.Contains(err.Error(), "2") || !strings.Contains(err.Error(), "3") {
		t.Errorf("error %q should name both lengths", err)
	}
}

func TestCosineNeverExceedsBounds(t *testing.T) {
	// Nearly parallel vectors can overshoot 1.0 in floating point.
	a := embeddings.Vector{0.1, 0.1, 0.1, 0.1}
	b := embeddings.Vector{0.1000001, 0.1, 0.1, 0.1}
	sim, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim < 0 || sim > 1 {
		t.Errorf("similarity %f out of [0,1]", sim)
	}
}

func TestScoreAll(t *testing.T) {
	ref := embeddings.Vector{1, 0}
	candidates := []embeddings.Result{
		{Vector: embeddings.Vector{1, 0}},
		{Vector: embeddings.Vector{0, 1}},
		{Failed: true},
	}

	scores, err := ScoreAll(ref, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if math.Abs(scores[0]-1.0) > 1e-6 {
		t.Errorf("scores[0] = %f, want 1.0", scores[0])
	}
	if scores[1] != 0 {
		t.Errorf("scores[1] = %f, want 0", scores[1])
	}
	if scores[2] != 0 {
		t.Errorf("failed candidate scored %f, want 0", scores[2])
	}
}

func TestScoreAllEmptyReference(t *testing.T) {
	_, err := ScoreAll(nil, []embeddings.Result{{Vector: embeddings.Vector{1}}})
	if !errors.Is(err, ErrEmptyReference) {
		t.Errorf("got %v, want ErrEmptyReference", err)
	}
}

func TestScoreAllNoCandidates(t *testing.T) {
	scores, err := ScoreAll(embeddings.Vector{1, 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("expected no scores, got %v", scores)
	}
}

func TestScoreAllDimensionMismatch(t *testing.T) {
	_, err := ScoreAll(embeddings.Vector{1, 2}, []embeddings.Result{
		{Vector: embeddings.Vector{1, 2, 3}},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}
