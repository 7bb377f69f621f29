// Package ranker pairs candidates with similarity scores and selects the
// best matches.
package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"job-match/internal/jobs"
)

// ErrLengthMismatch means candidates and scores are not index-aligned,
// which signals a pipeline wiring bug.
var ErrLengthMismatch = errors.New("candidates and scores length mismatch")

// Recommendation is a candidate annotated with its similarity score and
// 1-based rank. The ranked list is the pipeline's sole output artifact.
type Recommendation struct {
	jobs.Candidate
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
}

// TopN sorts candidates by score descending and returns the first n as
// recommendations. The sort is stable, so equal scores keep their original
// relative order. Scores are rounded to 4 decimal digits in the output.
func TopN(candidates []jobs.Candidate, scores []float64, n int) ([]Recommendation, error) {
	if len(candidates) != len(scores) {
		return nil, fmt.Errorf("%w: %d candidates vs %d scores", ErrLengthMismatch, len(candidates), len(scores))
	}
	if len(candidates) == 0 || n <= 0 {
		return []Recommendation{}, nil
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if n > len(order) {
		n = len(order)
	}
	recs := make([]Recommendation, n)
	for rank, idx := range order[:n] {
		recs[rank] = Recommendation{
			Candidate:  candidates[idx],
			Similarity: math.Round(scores[idx]*10000) / 10000,
			Rank:       rank + 1,
		}
	}
	return recs, nil
}
