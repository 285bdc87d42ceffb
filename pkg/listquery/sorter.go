package listquery

import (
	"sort"

	"github.com/zots0127/docdesk/internal/domain/entities"
)

type lessFunc func(a, b entities.Project) bool

// partitionStatus maps the single-status sort keys to the status moved to the front
var partitionStatus = map[SortKey]entities.ProjectStatus{
	SortStatusApproved: entities.StatusApproved,
	SortStatusPending:  entities.StatusInProgress,
	SortStatusRejected: entities.StatusRejected,
	SortStatusEdit:     entities.StatusEdit,
	SortStatusClosed:   entities.StatusClosed,
}

// Sort returns a new slice ordered by key.
// Ties keep their input order, so repeated sorts are idempotent.
func Sort(projects []entities.Project, key SortKey) []entities.Project {
	out := make([]entities.Project, len(projects))
	copy(out, projects)

	less := comparator(key)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func comparator(key SortKey) lessFunc {
	switch key {
	case SortCreatedAtAsc:
		return func(a, b entities.Project) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case SortStatusDoneFirst:
		return byFileCount(entities.File.IsDone)
	case SortStatusPendingFirst:
		return byFileCount(func(f entities.File) bool { return !f.IsDone() })
	}

	if status, ok := partitionStatus[key]; ok {
		return func(a, b entities.Project) bool {
			return a.Status == status && b.Status != status
		}
	}

	return func(a, b entities.Project) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// byFileCount orders projects by descending number of matching files
func byFileCount(match func(entities.File) bool) lessFunc {
	return func(a, b entities.Project) bool {
		return a.CountFiles(match) > b.CountFiles(match)
	}
}
