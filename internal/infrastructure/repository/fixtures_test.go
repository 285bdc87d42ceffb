package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zots0127/docdesk/internal/domain/entities"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleSnapshot() *entities.Snapshot {
	return &entities.Snapshot{
		Projects: []entities.Project{
			{
				ID:        "p-1",
				Name:      "Alpha report",
				Status:    entities.StatusApproved,
				OwnerName: "Somchai",
				CreatedAt: baseTime.Add(2 * time.Hour),
				UpdatedAt: baseTime.Add(3 * time.Hour),
				Files: []entities.File{
					{
						ID: "f-1", ProjectID: "p-1", OriginalFileName: "alpha.pdf", FileExtension: "pdf",
						DownloadStatus: entities.DownloadStatusDone, CreatedAt: baseTime.Add(2 * time.Hour),
						AttachmentFiles: []entities.AttachmentFile{{ID: "a-1", Name: "annex.png", Size: 2048, MimeType: "image/png"}},
					},
				},
			},
			{
				ID:        "p-2",
				Name:      "Beta budget",
				Status:    entities.StatusInProgress,
				OwnerName: "Malee",
				CreatedAt: baseTime.Add(time.Hour),
				UpdatedAt: baseTime.Add(time.Hour),
				Files:     []entities.File{},
			},
		},
		OrphanFiles: []entities.File{
			{ID: "f-9", OriginalFileName: "loose.xlsx", FileExtension: "xlsx", DownloadStatus: "pending", CreatedAt: baseTime},
		},
	}
}

func writeSnapshotFile(t *testing.T, dir string, snap *entities.Snapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// stubSnapshotRepository counts loads and returns a fixed result
type stubSnapshotRepository struct {
	snap  *entities.Snapshot
	err   error
	loads atomic.Int32
}

func (s *stubSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	s.loads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func (s *stubSnapshotRepository) Name() string { return "stub" }
