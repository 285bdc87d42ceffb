package entities

import "time"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusUp      HealthStatus = "up"
	HealthStatusDown    HealthStatus = "down"
	HealthStatusPartial HealthStatus = "partial"
)

// HealthCheck aggregates the component checks of the list service
type HealthCheck struct {
	Status     HealthStatus           `json:"status"`
	Version    string                 `json:"version"`
	Timestamp  time.Time              `json:"timestamp"`
	Uptime     time.Duration          `json:"uptime"`
	Checks     map[string]CheckResult `json:"checks"`
	SystemInfo SystemInfo             `json:"system_info"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status  HealthStatus           `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo contains process runtime information
type SystemInfo struct {
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoRoutines int    `json:"go_routines"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`
}

// Worst returns the most severe of the given statuses
func Worst(statuses ...HealthStatus) HealthStatus {
	overall := HealthStatusUp
	for _, s := range statuses {
		if s == HealthStatusDown {
			return HealthStatusDown
		}
		if s == HealthStatusPartial {
			overall = HealthStatusPartial
		}
	}
	return overall
}
