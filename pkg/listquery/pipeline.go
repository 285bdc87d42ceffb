// Package listquery implements the project list query pipeline:
// normalize criteria, filter, sort and paginate a snapshot of projects.
//
// Every stage is pure. Run recomputes from scratch on each call and is safe
// to call from multiple goroutines.
package listquery

import "github.com/zots0127/docdesk/internal/domain/entities"

// Result is the output of one pipeline run
type Result struct {
	Criteria Criteria `json:"criteria"`
	Page
	// Matched is the number of projects left after filtering
	Matched int `json:"-"`
}

// Run executes Normalize → Filter → Sort → Paginate over projects
func Run(projects []entities.Project, raw RawCriteria, opts Options) Result {
	criteria := Normalize(raw, opts)

	filtered := Filter(NormalizeProjects(projects), criteria)
	sorted := Sort(filtered, criteria.SortKey)
	page := Paginate(sorted, criteria.Page, criteria.PageSize)

	// echo the clamped page back so the next request starts from it
	criteria.Page = page.Page

	return Result{
		Criteria: criteria,
		Page:     page,
		Matched:  len(filtered),
	}
}
