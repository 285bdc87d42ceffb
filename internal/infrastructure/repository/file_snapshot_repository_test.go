package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
	"github.com/zots0127/docdesk/pkg/logging"
)

func TestFileSnapshotRepository_Load(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(*testing.T, *entities.Snapshot)
	}{
		{
			name:    "valid snapshot",
			content: "",
			check: func(t *testing.T, snap *entities.Snapshot) {
				require.Len(t, snap.Projects, 2)
				assert.Equal(t, "Alpha report", snap.Projects[0].Name)
				assert.Equal(t, entities.StatusApproved, snap.Projects[0].Status)
				require.Len(t, snap.Projects[0].Files, 1)
				assert.Len(t, snap.Projects[0].Files[0].AttachmentFiles, 1)
				assert.NotNil(t, snap.Projects[1].Files)
				assert.Len(t, snap.OrphanFiles, 1)
			},
		},
		{
			name:    "missing collections become empty",
			content: `{}`,
			check: func(t *testing.T, snap *entities.Snapshot) {
				assert.NotNil(t, snap.Projects)
				assert.Empty(t, snap.Projects)
				assert.NotNil(t, snap.OrphanFiles)
			},
		},
		{
			name:    "invalid json",
			content: `{"projects": [`,
			wantErr: repository.ErrSnapshotMalformed,
		},
		{
			name:    "project without id",
			content: `{"projects":[{"name":"nameless"}]}`,
			wantErr: repository.ErrSnapshotMalformed,
		},
		{
			name:    "duplicate project id",
			content: `{"projects":[{"id":"p","name":"a"},{"id":"p","name":"b"}]}`,
			wantErr: repository.ErrSnapshotMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var path string
			if tt.content == "" {
				path = writeSnapshotFile(t, dir, sampleSnapshot())
			} else {
				path = filepath.Join(dir, "snapshot.json")
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			}

			repo := NewFileSnapshotRepository(path, logging.Discard())
			snap, err := repo.Load(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, snap)
		})
	}
}

func TestFileSnapshotRepository_Missing(t *testing.T) {
	repo := NewFileSnapshotRepository(filepath.Join(t.TempDir(), "nope.json"), logging.Discard())

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrSnapshotUnavailable)
	assert.Equal(t, "file", repo.Name())
}

func TestFileSnapshotRepository_InvalidateRereads(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot()
	path := writeSnapshotFile(t, dir, snap)

	repo := NewFileSnapshotRepository(path, logging.Discard())
	first, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Projects, 2)

	snap.Projects = snap.Projects[:1]
	writeSnapshotFile(t, dir, snap)

	cached, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached.Projects, 2)

	changed := 0
	repo.OnChange(func() { changed++ })
	repo.Invalidate()

	fresh, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh.Projects, 1)
	assert.Equal(t, 1, changed)
}

func TestFileSnapshotRepository_Watch(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot()
	path := writeSnapshotFile(t, dir, snap)

	repo := NewFileSnapshotRepository(path, logging.Discard())
	_, err := repo.Load(context.Background())
	require.NoError(t, err)

	notified := make(chan struct{}, 4)
	repo.OnChange(func() { notified <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, repo.Watch(ctx, 20*time.Millisecond))

	snap.Projects = snap.Projects[:1]
	writeSnapshotFile(t, dir, snap)

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	fresh, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh.Projects, 1)
}
