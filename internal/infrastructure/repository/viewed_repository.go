package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// MemoryViewedRepository keeps viewed marks for the life of the process
type MemoryViewedRepository struct {
	mu     sync.RWMutex
	viewed map[string]time.Time
}

// NewMemoryViewedRepository creates an in-memory viewed store
func NewMemoryViewedRepository() *MemoryViewedRepository {
	return &MemoryViewedRepository{viewed: make(map[string]time.Time)}
}

// IsViewed reports whether the project was marked viewed
func (r *MemoryViewedRepository) IsViewed(ctx context.Context, projectID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.viewed[projectID]
	return ok, nil
}

// MarkViewed records the first view of a project
func (r *MemoryViewedRepository) MarkViewed(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.viewed[projectID]; !ok {
		r.viewed[projectID] = time.Now()
	}
	return nil
}

// ViewedSet returns the viewed subset of projectIDs
func (r *MemoryViewedRepository) ViewedSet(ctx context.Context, projectIDs []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[string]bool)
	for _, id := range projectIDs {
		if _, ok := r.viewed[id]; ok {
			set[id] = true
		}
	}
	return set, nil
}

const viewedSchema = `
CREATE TABLE IF NOT EXISTS viewed_projects (
	project_id TEXT PRIMARY KEY,
	viewed_at TIMESTAMP NOT NULL
);
`

// viewedBatchSize bounds the IN list of one ViewedSet query
const viewedBatchSize = 500

// SQLViewedRepository stores viewed marks in the viewed_projects table
type SQLViewedRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLViewedRepository creates a SQL viewed store and its table
func NewSQLViewedRepository(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLViewedRepository, error) {
	if _, err := db.ExecContext(ctx, viewedSchema); err != nil {
		return nil, fmt.Errorf("failed to create viewed_projects table: %w", err)
	}
	return &SQLViewedRepository{db: db, dialect: dialect}, nil
}

// IsViewed reports whether the project was marked viewed
func (r *SQLViewedRepository) IsViewed(ctx context.Context, projectID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		r.dialect.rebind("SELECT COUNT(*) FROM viewed_projects WHERE project_id = ?"),
		projectID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query viewed state: %w", err)
	}
	return n > 0, nil
}

// MarkViewed records the first view of a project; later calls keep the original time
func (r *SQLViewedRepository) MarkViewed(ctx context.Context, projectID string) error {
	_, err := r.db.ExecContext(ctx,
		r.dialect.rebind("INSERT INTO viewed_projects (project_id, viewed_at) VALUES (?, ?) ON CONFLICT (project_id) DO NOTHING"),
		projectID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark project viewed: %w", err)
	}
	return nil
}

// ViewedSet returns the viewed subset of projectIDs
func (r *SQLViewedRepository) ViewedSet(ctx context.Context, projectIDs []string) (map[string]bool, error) {
	set := make(map[string]bool)
	for start := 0; start < len(projectIDs); start += viewedBatchSize {
		end := start + viewedBatchSize
		if end > len(projectIDs) {
			end = len(projectIDs)
		}
		if err := r.collect(ctx, projectIDs[start:end], set); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (r *SQLViewedRepository) collect(ctx context.Context, ids []string, set map[string]bool) error {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := r.dialect.rebind("SELECT project_id FROM viewed_projects WHERE project_id IN (" + placeholders(len(ids)) + ")")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query viewed set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan viewed row: %w", err)
		}
		set[id] = true
	}
	return rows.Err()
}
