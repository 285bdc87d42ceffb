package entities

// Snapshot is the materialized payload served by the document API:
// { "projects": [...], "orphanFiles": [...] }
type Snapshot struct {
	Projects    []Project `json:"projects"`
	OrphanFiles []File    `json:"orphanFiles"`
}

// FindProject returns the project with the given id
func (s *Snapshot) FindProject(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectIDs returns the ids of all projects in snapshot order
func (s *Snapshot) ProjectIDs() []string {
	ids := make([]string, 0, len(s.Projects))
	for _, p := range s.Projects {
		ids = append(ids, p.ID)
	}
	return ids
}
