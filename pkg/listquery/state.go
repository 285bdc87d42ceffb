package listquery

import "github.com/zots0127/docdesk/internal/domain/entities"

// State is the whole list screen state: the fetched snapshot plus the
// criteria typed by the user. The visible page is derived with Select.
type State struct {
	Snapshot entities.Snapshot
	Criteria RawCriteria
}

// Action is one UI event applied to a State
type Action func(*State)

// Reduce applies actions in order and returns the next state.
// The receiver is not modified.
func (s State) Reduce(actions ...Action) State {
	next := s
	for _, action := range actions {
		action(&next)
	}
	return next
}

// Select derives the visible page from the state
func (s State) Select(opts Options) Result {
	return Run(s.Snapshot.Projects, s.Criteria, opts)
}

// SetSnapshot replaces the data. The page is kept and clamped by the paginator.
func SetSnapshot(snapshot entities.Snapshot) Action {
	return func(s *State) {
		s.Snapshot = snapshot
	}
}

// SetSearchTerm updates the search box and returns to the first page
func SetSearchTerm(term string) Action {
	return func(s *State) {
		s.Criteria.SearchTerm = term
		s.Criteria.Page = 1
	}
}

// SetFileType updates the file-type dropdown and returns to the first page
func SetFileType(fileType string) Action {
	return func(s *State) {
		s.Criteria.FileTypeFilter = fileType
		s.Criteria.Page = 1
	}
}

// SetStatus updates the status dropdown and returns to the first page
func SetStatus(status string) Action {
	return func(s *State) {
		s.Criteria.StatusFilter = status
		s.Criteria.Page = 1
	}
}

// SetSort updates the sort dropdown and returns to the first page
func SetSort(key string) Action {
	return func(s *State) {
		s.Criteria.SortKey = key
		s.Criteria.Page = 1
	}
}

// SetPage moves to another page
func SetPage(page int) Action {
	return func(s *State) {
		s.Criteria.Page = page
	}
}

// SetPageSize changes the page size and returns to the first page
func SetPageSize(size int) Action {
	return func(s *State) {
		s.Criteria.PageSize = size
		s.Criteria.Page = 1
	}
}
