package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockViewedRepository is a mock implementation of ViewedRepository
type MockViewedRepository struct {
	mock.Mock
}

// IsViewed mocks the IsViewed method
func (m *MockViewedRepository) IsViewed(ctx context.Context, projectID string) (bool, error) {
	args := m.Called(ctx, projectID)
	return args.Bool(0), args.Error(1)
}

// MarkViewed mocks the MarkViewed method
func (m *MockViewedRepository) MarkViewed(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

// ViewedSet mocks the ViewedSet method
func (m *MockViewedRepository) ViewedSet(ctx context.Context, projectIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, projectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}
