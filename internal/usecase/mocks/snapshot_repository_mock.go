package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zots0127/docdesk/internal/domain/entities"
)

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

// Load mocks the Load method
func (m *MockSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Snapshot), args.Error(1)
}

// Name mocks the Name method
func (m *MockSnapshotRepository) Name() string {
	args := m.Called()
	return args.String(0)
}
