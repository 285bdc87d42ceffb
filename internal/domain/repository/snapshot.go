package repository

import (
	"context"
	"errors"

	"github.com/zots0127/docdesk/internal/domain/entities"
)

// SnapshotRepository supplies the materialized project/file snapshot.
// It is the data-fetch side of the list pipeline; implementations only read.
type SnapshotRepository interface {
	// Load returns the current snapshot
	Load(ctx context.Context) (*entities.Snapshot, error)

	// Name identifies the source in logs and metrics
	Name() string
}

// SnapshotSource is the configured kind of snapshot repository
type SnapshotSource string

const (
	SnapshotSourceFile  SnapshotSource = "file"
	SnapshotSourceHTTP  SnapshotSource = "http"
	SnapshotSourceSQL   SnapshotSource = "sql"
	SnapshotSourceMongo SnapshotSource = "mongo"
	SnapshotSourceS3    SnapshotSource = "s3"
)

// Snapshot repository errors
var (
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
	ErrSnapshotMalformed   = errors.New("snapshot malformed")
	ErrProjectNotFound     = errors.New("project not found")
)
