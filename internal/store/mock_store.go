package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"job-match/internal/ranker"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRun(ctx context.Context, run Run) (Run, error) {
	args := m.Called(ctx, run)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Run), args.Error(1)
}

func (m *MockStore) UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus, reason string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

func (m *MockStore) SaveRecommendations(ctx context.Context, runID uuid.UUID, recs []ranker.Recommendation) error {
	args := m.Called(ctx, runID, recs)
	return args.Error(0)
}

func (m *MockStore) ListRecommendations(ctx context.Context, runID uuid.UUID) ([]ranker.Recommendation, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ranker.Recommendation), args.Error(1)
}
