package repository

import (
	"context"

	"github.com/zots0127/docdesk/internal/domain/entities"
)

// HealthRepository defines the interface for health check operations
type HealthRepository interface {
	// CheckHealth performs a comprehensive health check
	CheckHealth(ctx context.Context) (*entities.HealthCheck, error)

	// CheckDatabase verifies the viewed-store database
	CheckDatabase(ctx context.Context) entities.CheckResult

	// CheckSnapshot verifies the snapshot source can be loaded
	CheckSnapshot(ctx context.Context) entities.CheckResult

	// GetSystemInfo retrieves runtime information
	GetSystemInfo(ctx context.Context) (*entities.SystemInfo, error)

	// IsReady checks if the service is ready to handle requests
	IsReady(ctx context.Context) (bool, string)
}
