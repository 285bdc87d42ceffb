package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// S3SnapshotOptions locates the snapshot object
type S3SnapshotOptions struct {
	Endpoint  string
	Region    string
	Bucket    string
	Key       string
	AccessKey string
	SecretKey string
}

// S3SnapshotRepository reads the snapshot from one JSON object in an
// S3-compatible bucket
type S3SnapshotRepository struct {
	client s3iface.S3API
	bucket string
	key    string
}

// NewS3Client creates an S3 client; a custom endpoint switches to path-style addressing
func NewS3Client(opts S3SnapshotOptions) (s3iface.S3API, error) {
	cfg := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if opts.AccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return s3.New(sess), nil
}

// NewS3SnapshotRepository creates an S3 snapshot repository
func NewS3SnapshotRepository(client s3iface.S3API, bucket, key string) *S3SnapshotRepository {
	return &S3SnapshotRepository{client: client, bucket: bucket, key: key}
}

// Name identifies the source
func (r *S3SnapshotRepository) Name() string {
	return string(repository.SnapshotSourceS3)
}

// Load downloads and decodes the snapshot object
func (r *S3SnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	out, err := r.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			return nil, fmt.Errorf("%w: s3://%s/%s: %s", repository.ErrSnapshotUnavailable, r.bucket, r.key, aerr.Code())
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrSnapshotUnavailable, err)
	}
	defer out.Body.Close()

	snap, err := decodeSnapshot(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", r.bucket, r.key, err)
	}
	return snap, nil
}
