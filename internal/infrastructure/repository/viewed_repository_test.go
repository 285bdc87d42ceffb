package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/docdesk/internal/domain/repository"
)

func TestViewedRepositories(t *testing.T) {
	implementations := map[string]func(t *testing.T) repository.ViewedRepository{
		"memory": func(t *testing.T) repository.ViewedRepository {
			return NewMemoryViewedRepository()
		},
		"sqlite": func(t *testing.T) repository.ViewedRepository {
			repo, err := NewSQLViewedRepository(context.Background(), newTestDB(t), DialectSQLite)
			require.NoError(t, err)
			return repo
		},
	}

	for name, newRepo := range implementations {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			viewed, err := repo.IsViewed(ctx, "p-1")
			require.NoError(t, err)
			assert.False(t, viewed)

			require.NoError(t, repo.MarkViewed(ctx, "p-1"))
			require.NoError(t, repo.MarkViewed(ctx, "p-1"), "marking twice is a no-op")
			require.NoError(t, repo.MarkViewed(ctx, "p-3"))

			viewed, err = repo.IsViewed(ctx, "p-1")
			require.NoError(t, err)
			assert.True(t, viewed)

			set, err := repo.ViewedSet(ctx, []string{"p-1", "p-2", "p-3"})
			require.NoError(t, err)
			assert.Equal(t, map[string]bool{"p-1": true, "p-3": true}, set)

			set, err = repo.ViewedSet(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, set)
		})
	}
}

func TestSQLViewedRepository_LargeSet(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLViewedRepository(ctx, newTestDB(t), DialectSQLite)
	require.NoError(t, err)

	ids := make([]string, 0, viewedBatchSize+10)
	for i := 0; i < viewedBatchSize+10; i++ {
		ids = append(ids, fmt.Sprintf("p-%d", i))
	}
	require.NoError(t, repo.MarkViewed(ctx, ids[0]))
	require.NoError(t, repo.MarkViewed(ctx, ids[len(ids)-1]))

	set, err := repo.ViewedSet(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.True(t, set[ids[len(ids)-1]])
}
