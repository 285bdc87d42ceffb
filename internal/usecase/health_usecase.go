package usecase

import (
	"context"
	"time"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// HealthUseCase handles health check business logic
type HealthUseCase struct {
	healthRepo repository.HealthRepository
	startTime  time.Time
	version    string
}

// NewHealthUseCase creates a new health use case
func NewHealthUseCase(healthRepo repository.HealthRepository, version string) *HealthUseCase {
	return &HealthUseCase{
		healthRepo: healthRepo,
		startTime:  time.Now(),
		version:    version,
	}
}

// GetHealth returns the overall health status
func (h *HealthUseCase) GetHealth(ctx context.Context) (*entities.HealthCheck, error) {
	health, err := h.healthRepo.CheckHealth(ctx)
	if err != nil {
		return nil, err
	}

	health.Version = h.version
	health.Uptime = time.Since(h.startTime)
	health.Timestamp = time.Now()

	statuses := make([]entities.HealthStatus, 0, len(health.Checks))
	for _, check := range health.Checks {
		statuses = append(statuses, check.Status)
	}
	health.Status = entities.Worst(statuses...)

	return health, nil
}

// GetReadiness checks if the service is ready
func (h *HealthUseCase) GetReadiness(ctx context.Context) (bool, string) {
	return h.healthRepo.IsReady(ctx)
}

// GetLiveness checks if the service is alive
func (h *HealthUseCase) GetLiveness(ctx context.Context) bool {
	return true
}
