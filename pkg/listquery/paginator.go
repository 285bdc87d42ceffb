package listquery

import "github.com/zots0127/docdesk/internal/domain/entities"

// Page is one bounded slice of the ordered result set.
// StartIndex is 0-based; display it as StartIndex+1.
type Page struct {
	Items      []entities.Project `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	TotalItems int                `json:"totalItems"`
	StartIndex int                `json:"startIndex"`
	EndIndex   int                `json:"endIndex"`
}

// Paginate slices projects into the requested page.
// A stale page number is clamped into [1, TotalPages] instead of failing.
func Paginate(projects []entities.Project, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}

	totalItems := len(projects)
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > totalItems {
		end = totalItems
	}

	items := make([]entities.Project, end-start)
	copy(items, projects[start:end])

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: totalItems,
		StartIndex: start,
		EndIndex:   end,
	}
}
