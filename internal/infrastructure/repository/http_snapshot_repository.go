package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// HTTPSnapshotOptions configures the document API client
type HTTPSnapshotOptions struct {
	URL         string
	APIKey      string
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
}

// HTTPSnapshotRepository fetches the snapshot from the document API.
// Calls go through a circuit breaker so a failing upstream is not hammered.
type HTTPSnapshotRepository struct {
	opts    HTTPSnapshotOptions
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logrus.FieldLogger
}

// NewHTTPSnapshotRepository creates an HTTP snapshot repository
func NewHTTPSnapshotRepository(opts HTTPSnapshotOptions, logger logrus.FieldLogger) *HTTPSnapshotRepository {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	logger = logger.WithField("component", "http_snapshot")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "snapshot-api",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &HTTPSnapshotRepository{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Name identifies the source
func (r *HTTPSnapshotRepository) Name() string {
	return string(repository.SnapshotSourceHTTP)
}

// Load fetches and decodes the snapshot
func (r *HTTPSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", repository.ErrSnapshotUnavailable, err)
		}
		return nil, err
	}
	return result.(*entities.Snapshot), nil
}

func (r *HTTPSnapshotRepository) fetch(ctx context.Context) (*entities.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.opts.APIKey != "" {
		req.Header.Set("X-API-Key", r.opts.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrSnapshotUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: upstream returned %s", repository.ErrSnapshotUnavailable, resp.Status)
	}

	return decodeSnapshot(resp.Body)
}

// BreakerState reports the circuit breaker state for diagnostics
func (r *HTTPSnapshotRepository) BreakerState() string {
	return r.breaker.State().String()
}
