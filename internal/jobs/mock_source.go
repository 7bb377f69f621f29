package jobs

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of Source using testify/mock.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Fetch(ctx context.Context, location, keywords string, maxCount int) ([]Candidate, error) {
	args := m.Called(ctx, location, keywords, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Candidate), args.Error(1)
}
