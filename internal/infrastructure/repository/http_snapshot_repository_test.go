package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/docdesk/internal/domain/repository"
	"github.com/zots0127/docdesk/pkg/logging"
)

func TestHTTPSnapshotRepository_Load(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleSnapshot())
	}))
	defer server.Close()

	repo := NewHTTPSnapshotRepository(HTTPSnapshotOptions{
		URL:    server.URL,
		APIKey: "k-123",
	}, logging.Discard())

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Projects, 2)
	assert.Len(t, snap.OrphanFiles, 1)
	assert.Equal(t, "k-123", gotKey)
	assert.Equal(t, "http", repo.Name())
}

func TestHTTPSnapshotRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: repository.ErrSnapshotUnavailable,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: repository.ErrSnapshotUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"projects": "nope"}`))
			},
			wantErr: repository.ErrSnapshotMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			repo := NewHTTPSnapshotRepository(HTTPSnapshotOptions{URL: server.URL}, logging.Discard())
			_, err := repo.Load(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPSnapshotRepository_CircuitBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := NewHTTPSnapshotRepository(HTTPSnapshotOptions{
		URL:         server.URL,
		MaxFailures: 2,
		OpenTimeout: time.Minute,
	}, logging.Discard())

	for i := 0; i < 2; i++ {
		_, err := repo.Load(context.Background())
		require.ErrorIs(t, err, repository.ErrSnapshotUnavailable)
	}
	assert.Equal(t, "open", repo.BreakerState())

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrSnapshotUnavailable)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the upstream")
}
