package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/usecase"
	"github.com/zots0127/docdesk/internal/usecase/mocks"
)

func newHealthRouter(repo *mocks.MockHealthRepository) *gin.Engine {
	router := gin.New()
	NewHealthHandler(usecase.NewHealthUseCase(repo, "test")).RegisterRoutes(router)
	return router
}

func TestHealthHandler_GetHealth(t *testing.T) {
	tests := []struct {
		name       string
		check      *entities.HealthCheck
		err        error
		wantStatus int
	}{
		{
			name: "healthy",
			check: &entities.HealthCheck{Checks: map[string]entities.CheckResult{
				"snapshot": {Status: entities.HealthStatusUp},
			}},
			wantStatus: http.StatusOK,
		},
		{
			name: "partial still serves",
			check: &entities.HealthCheck{Checks: map[string]entities.CheckResult{
				"database": {Status: entities.HealthStatusPartial},
				"snapshot": {Status: entities.HealthStatusUp},
			}},
			wantStatus: http.StatusOK,
		},
		{
			name: "snapshot down",
			check: &entities.HealthCheck{Checks: map[string]entities.CheckResult{
				"snapshot": {Status: entities.HealthStatusDown},
			}},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "repository error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockHealthRepository{}
			if tt.err != nil {
				repo.On("CheckHealth", mock.Anything).Return(nil, tt.err)
			} else {
				repo.On("CheckHealth", mock.Anything).Return(tt.check, nil)
			}

			w := httptest.NewRecorder()
			newHealthRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err == nil {
				var body entities.HealthCheck
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "test", body.Version)
			}
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	repo := &mocks.MockHealthRepository{}
	repo.On("IsReady", mock.Anything).Return(false, "Snapshot load failed").Once()
	repo.On("IsReady", mock.Anything).Return(true, "Service is ready").Once()
	router := newHealthRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}
