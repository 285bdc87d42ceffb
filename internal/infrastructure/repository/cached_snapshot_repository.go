package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
	"github.com/zots0127/docdesk/pkg/metrics"
)

const snapshotCacheKey = "snapshot"

// CachedSnapshotRepository keeps the last loaded snapshot for a TTL.
// Concurrent misses share one upstream load.
type CachedSnapshotRepository struct {
	inner repository.SnapshotRepository
	cache *expirable.LRU[string, *entities.Snapshot]
	group singleflight.Group
}

// NewCachedSnapshotRepository wraps inner with an expiring cache.
// ttl must be positive; expirable treats zero as never expire.
func NewCachedSnapshotRepository(inner repository.SnapshotRepository, ttl time.Duration) *CachedSnapshotRepository {
	return &CachedSnapshotRepository{
		inner: inner,
		cache: expirable.NewLRU[string, *entities.Snapshot](1, nil, ttl),
	}
}

// Name identifies the wrapped source
func (r *CachedSnapshotRepository) Name() string {
	return r.inner.Name()
}

// Load returns the cached snapshot or loads a fresh one
func (r *CachedSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	if snap, ok := r.cache.Get(snapshotCacheKey); ok {
		metrics.RecordCacheLookup(true)
		return snap, nil
	}
	metrics.RecordCacheLookup(false)

	v, err, _ := r.group.Do(snapshotCacheKey, func() (interface{}, error) {
		snap, err := r.inner.Load(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Add(snapshotCacheKey, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entities.Snapshot), nil
}

// Invalidate drops the cached snapshot
func (r *CachedSnapshotRepository) Invalidate() {
	r.cache.Purge()
}
