package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"job-match/internal/filter"
	"job-match/internal/ranker"
)

type RunStatus string

const (
	StatusProcessing RunStatus = "processing"
	StatusReady      RunStatus = "ready"
	StatusFailed     RunStatus = "failed"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one match request and its lifecycle. Recommendations are stored
// separately once the pipeline finishes.
type Run struct {
	ID             uuid.UUID
	ResumeFilename string
	Location       string
	Keywords       string
	MaxJobs        int
	TopN           int
	Criteria       filter.Criteria
	Status         RunStatus
	FailReason     string
	CreatedAt      time.Time
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateRun(ctx context.Context, run Run) (Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus, reason string) error
	SaveRecommendations(ctx context.Context, runID uuid.UUID, recs []ranker.Recommendation) error
	ListRecommendations(ctx context.Context, runID uuid.UUID) ([]ranker.Recommendation, error)
}
