package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// decodeSnapshot reads a {projects, orphanFiles} JSON document.
// Every project must pass validation; nil collections become empty.
func decodeSnapshot(r io.Reader) (*entities.Snapshot, error) {
	var snap entities.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrSnapshotMalformed, err)
	}
	if err := validateSnapshot(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func validateSnapshot(snap *entities.Snapshot) error {
	if snap.Projects == nil {
		snap.Projects = []entities.Project{}
	}
	if snap.OrphanFiles == nil {
		snap.OrphanFiles = []entities.File{}
	}

	seen := make(map[string]bool, len(snap.Projects))
	for i := range snap.Projects {
		p := &snap.Projects[i]
		if result := p.Validate(); !result.IsValid {
			return fmt.Errorf("%w: project %d: %s", repository.ErrSnapshotMalformed, i, strings.Join(result.Errors, "; "))
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate project id %q", repository.ErrSnapshotMalformed, p.ID)
		}
		seen[p.ID] = true
		if p.Files == nil {
			p.Files = []entities.File{}
		}
	}
	return nil
}

// groupFiles attaches files to their projects; the rest become orphan files
func groupFiles(projects []entities.Project, files []entities.File) *entities.Snapshot {
	index := make(map[string]int, len(projects))
	for i := range projects {
		projects[i].Files = []entities.File{}
		index[projects[i].ID] = i
	}

	orphans := []entities.File{}
	for _, f := range files {
		i, ok := index[f.ProjectID]
		if f.ProjectID == "" || !ok {
			// Files pointing at a deleted project are treated as orphans.
			f.ProjectID = ""
			orphans = append(orphans, f)
			continue
		}
		projects[i].Files = append(projects[i].Files, f)
	}
	return &entities.Snapshot{Projects: projects, OrphanFiles: orphans}
}
