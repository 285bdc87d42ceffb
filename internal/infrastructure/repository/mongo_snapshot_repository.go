package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// MongoSnapshotRepository reads the snapshot from the projects and files collections
type MongoSnapshotRepository struct {
	projects *mongo.Collection
	files    *mongo.Collection
}

// ConnectMongo connects and pings a MongoDB deployment
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// NewMongoSnapshotRepository creates a Mongo snapshot repository on the database
func NewMongoSnapshotRepository(db *mongo.Database) *MongoSnapshotRepository {
	return &MongoSnapshotRepository{
		projects: db.Collection("projects"),
		files:    db.Collection("files"),
	}
}

// Name identifies the source
func (r *MongoSnapshotRepository) Name() string {
	return string(repository.SnapshotSourceMongo)
}

// Load reads both collections and groups files under their projects
func (r *MongoSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	projCursor, err := r.projects.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: find projects: %v", repository.ErrSnapshotUnavailable, err)
	}
	var projects []entities.Project
	if err := projCursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("%w: decode projects: %v", repository.ErrSnapshotMalformed, err)
	}

	fileCursor, err := r.files.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: find files: %v", repository.ErrSnapshotUnavailable, err)
	}
	var files []entities.File
	if err := fileCursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("%w: decode files: %v", repository.ErrSnapshotMalformed, err)
	}

	snap := groupFiles(projects, files)
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}
