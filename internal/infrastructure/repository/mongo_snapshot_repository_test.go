package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

func TestMongoSnapshotRepository_Load(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("groups files under projects", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "docdesk.projects", mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "p-1"},
					{Key: "name", Value: "Alpha report"},
					{Key: "status", Value: string(entities.StatusApproved)},
					{Key: "createdAt", Value: baseTime},
				},
			),
			mtest.CreateCursorResponse(0, "docdesk.files", mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "f-1"},
					{Key: "projectId", Value: "p-1"},
					{Key: "fileExtension", Value: "pdf"},
					{Key: "createdAt", Value: baseTime},
				},
				bson.D{
					{Key: "_id", Value: "f-9"},
					{Key: "fileExtension", Value: "xlsx"},
					{Key: "createdAt", Value: baseTime},
				},
			),
		)

		repo := NewMongoSnapshotRepository(mt.DB)
		assert.Equal(t, "mongo", repo.Name())

		snap, err := repo.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, snap.Projects, 1)
		assert.Equal(t, "Alpha report", snap.Projects[0].Name)
		require.Len(t, snap.Projects[0].Files, 1)
		assert.Equal(t, "f-1", snap.Projects[0].Files[0].ID)
		require.Len(t, snap.OrphanFiles, 1)
		assert.Equal(t, "f-9", snap.OrphanFiles[0].ID)
	})

	mt.Run("command error is unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Message: "interrupted at shutdown",
			Name:    "InterruptedAtShutdown",
		}))

		_, err := NewMongoSnapshotRepository(mt.DB).Load(context.Background())
		assert.ErrorIs(t, err, repository.ErrSnapshotUnavailable)
	})
}
