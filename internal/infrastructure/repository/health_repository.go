package repository

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// HealthRepositoryImpl implements HealthRepository
type HealthRepositoryImpl struct {
	db        *sql.DB
	snapshots repository.SnapshotRepository
}

// NewHealthRepository creates a new health repository.
// db may be nil when the viewed store is kept in memory.
func NewHealthRepository(db *sql.DB, snapshots repository.SnapshotRepository) repository.HealthRepository {
	return &HealthRepositoryImpl{
		db:        db,
		snapshots: snapshots,
	}
}

// CheckHealth performs a comprehensive health check
func (h *HealthRepositoryImpl) CheckHealth(ctx context.Context) (*entities.HealthCheck, error) {
	checks := make(map[string]entities.CheckResult)

	if h.db != nil {
		checks["database"] = h.CheckDatabase(ctx)
	}
	checks["snapshot"] = h.CheckSnapshot(ctx)

	systemInfo, err := h.GetSystemInfo(ctx)
	if err != nil {
		systemInfo = &entities.SystemInfo{}
	}

	statuses := make([]entities.HealthStatus, 0, len(checks))
	for _, check := range checks {
		statuses = append(statuses, check.Status)
	}

	return &entities.HealthCheck{
		Status:     entities.Worst(statuses...),
		Checks:     checks,
		SystemInfo: *systemInfo,
	}, nil
}

// CheckDatabase verifies database connectivity and health
func (h *HealthRepositoryImpl) CheckDatabase(ctx context.Context) entities.CheckResult {
	if h.db == nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: "Database connection is nil",
		}
	}

	if err := h.db.PingContext(ctx); err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Database ping failed: %v", err),
		}
	}

	stats := h.db.Stats()
	details := map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": stats.MaxOpenConnections,
	}

	status := entities.HealthStatusUp
	message := "Database is healthy"

	if stats.MaxOpenConnections > 0 && stats.InUse > stats.MaxOpenConnections*8/10 {
		status = entities.HealthStatusPartial
		message = "High database connection usage"
	}

	return entities.CheckResult{
		Status:  status,
		Message: message,
		Details: details,
	}
}

// CheckSnapshot loads the snapshot once and reports its size
func (h *HealthRepositoryImpl) CheckSnapshot(ctx context.Context) entities.CheckResult {
	if h.snapshots == nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: "No snapshot source configured",
		}
	}

	snap, err := h.snapshots.Load(ctx)
	if err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Snapshot load failed: %v", err),
			Details: map[string]interface{}{"source": h.snapshots.Name()},
		}
	}

	return entities.CheckResult{
		Status:  entities.HealthStatusUp,
		Message: "Snapshot source is healthy",
		Details: map[string]interface{}{
			"source":       h.snapshots.Name(),
			"projects":     len(snap.Projects),
			"orphan_files": len(snap.OrphanFiles),
		},
	}
}

// GetSystemInfo retrieves runtime information
func (h *HealthRepositoryImpl) GetSystemInfo(ctx context.Context) (*entities.SystemInfo, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &entities.SystemInfo{
		HeapAlloc:  memStats.HeapAlloc,
		HeapSys:    memStats.HeapSys,
		NumGC:      memStats.NumGC,
		GoRoutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}, nil
}

// IsReady checks if the service is ready to handle requests
func (h *HealthRepositoryImpl) IsReady(ctx context.Context) (bool, string) {
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			return false, fmt.Sprintf("Database not ready: %v", err)
		}
	}

	if check := h.CheckSnapshot(ctx); check.Status == entities.HealthStatusDown {
		return false, check.Message
	}

	return true, "Service is ready"
}
