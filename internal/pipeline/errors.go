package pipeline

import (
	"errors"
	"fmt"
)

// Stage names carried by StageError for diagnosis.
const (
	StageResume    = "resume"
	StageJobs      = "jobs"
	StageEmbedding = "embedding"
	StageRanking   = "ranking"
)

var (
	// ErrEmptyResume means the resume yielded no usable text.
	ErrEmptyResume = errors.New("failed to extract text from resume")

	// ErrNoJobsFound means the job source returned nothing.
	ErrNoJobsFound = errors.New("no jobs found")

	// ErrNoJobsMatchFilters means filtering emptied the candidate set.
	ErrNoJobsMatchFilters = errors.New("no jobs match filter criteria")

	// ErrEmbeddingFailed means every job embedding failed, which points
	// at a total provider outage rather than per-item trouble.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// StageError is the pipeline's single terminal failure: the stage that
// aborted the run plus the underlying reason. There is no partial result.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
