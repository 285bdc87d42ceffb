package listquery

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/zots0127/docdesk/internal/domain/entities"
)

// Filter keeps the projects matching every predicate of c.
// The input slice and its nested files are left untouched.
func Filter(projects []entities.Project, c Criteria) []entities.Project {
	// Caser holds state, one per call keeps Filter re-entrant
	fold := cases.Fold()
	term := fold.String(c.SearchTerm)
	fileType := fold.String(c.FileTypeFilter)

	out := make([]entities.Project, 0, len(projects))
	for _, p := range projects {
		if !matchesSearch(fold, p, term) {
			continue
		}
		if c.FileTypeFilter != All && !matchesFileType(fold, p, fileType) {
			continue
		}
		if c.StatusFilter != All && string(p.Status) != c.StatusFilter {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchesSearch checks name, owner and file names against a folded term
func matchesSearch(fold cases.Caser, p entities.Project, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(fold.String(p.Name), term) || strings.Contains(fold.String(p.OwnerName), term) {
		return true
	}
	for _, f := range p.Files {
		if strings.Contains(fold.String(f.OriginalFileName), term) {
			return true
		}
	}
	return false
}

func matchesFileType(fold cases.Caser, p entities.Project, fileType string) bool {
	for _, f := range p.Files {
		if fold.String(f.FileExtension) == fileType {
			return true
		}
	}
	return false
}
