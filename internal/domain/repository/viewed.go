package repository

import "context"

// ViewedRepository remembers which projects a user already opened.
// Projects that were never viewed are shown with a "NEW" badge.
type ViewedRepository interface {
	// IsViewed reports whether the project was marked viewed
	IsViewed(ctx context.Context, projectID string) (bool, error)

	// MarkViewed records the project as viewed; repeated calls are no-ops
	MarkViewed(ctx context.Context, projectID string) error

	// ViewedSet returns the subset of projectIDs that were viewed
	ViewedSet(ctx context.Context, projectIDs []string) (map[string]bool, error)
}
