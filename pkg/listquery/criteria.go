package listquery

import (
	"strings"

	"github.com/zots0127/docdesk/internal/domain/entities"
)

// All is the filter sentinel meaning "no constraint"
const All = "ALL"

// SortKey names one of the list orderings
type SortKey string

const (
	SortCreatedAtDesc      SortKey = "createdAtDesc"
	SortCreatedAtAsc       SortKey = "createdAtAsc"
	SortStatusDoneFirst    SortKey = "statusDoneFirst"
	SortStatusPendingFirst SortKey = "statusPendingFirst"
	SortStatusApproved     SortKey = "statusApproved"
	SortStatusPending      SortKey = "statusPending"
	SortStatusRejected     SortKey = "statusRejected"
	SortStatusEdit         SortKey = "statusEdit"
	SortStatusClosed       SortKey = "statusClosed"
)

// DefaultSortKey is used when the requested key is unknown
const DefaultSortKey = SortCreatedAtDesc

// DefaultPageSize is the page size of the project list screens
const DefaultPageSize = 10

// DefaultFileTypes are the extensions offered by the file-type dropdown
var DefaultFileTypes = []string{"pdf", "doc", "docx", "xls", "xlsx"}

// SortKeys lists every known sort key
func SortKeys() []SortKey {
	return []SortKey{
		SortCreatedAtDesc, SortCreatedAtAsc,
		SortStatusDoneFirst, SortStatusPendingFirst,
		SortStatusApproved, SortStatusPending, SortStatusRejected, SortStatusEdit, SortStatusClosed,
	}
}

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	for _, known := range SortKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// RawCriteria is the unvalidated input coming from a request or UI event
type RawCriteria struct {
	SearchTerm     string `json:"searchTerm" form:"search"`
	FileTypeFilter string `json:"fileTypeFilter" form:"fileType"`
	StatusFilter   string `json:"statusFilter" form:"status"`
	SortKey        string `json:"sortKey" form:"sort"`
	Page           int    `json:"page" form:"page"`
	PageSize       int    `json:"pageSize" form:"pageSize"`
}

// Criteria is the normalized tuple driving one pipeline run.
// Every field is within its domain.
type Criteria struct {
	SearchTerm     string  `json:"searchTerm"`
	FileTypeFilter string  `json:"fileTypeFilter"`
	StatusFilter   string  `json:"statusFilter"`
	SortKey        SortKey `json:"sortKey"`
	Page           int     `json:"page"`
	PageSize       int     `json:"pageSize"`
}

// Options tune normalization per screen
type Options struct {
	DefaultPageSize int      `yaml:"default_page_size" json:"default_page_size"`
	MaxPageSize     int      `yaml:"max_page_size" json:"max_page_size"`
	FileTypes       []string `yaml:"file_types" json:"file_types"`
}

// DefaultOptions returns the options used by the project list screens
func DefaultOptions() Options {
	return Options{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     100,
		FileTypes:       DefaultFileTypes,
	}
}

func (o Options) fileTypes() []string {
	if len(o.FileTypes) == 0 {
		return DefaultFileTypes
	}
	return o.FileTypes
}

// Normalize fills defaults and replaces out-of-domain values.
// It never fails: unknown filters become All, unknown sort keys become DefaultSortKey.
func Normalize(raw RawCriteria, opts Options) Criteria {
	c := Criteria{
		SearchTerm:     strings.TrimSpace(raw.SearchTerm),
		FileTypeFilter: normalizeFileType(raw.FileTypeFilter, opts.fileTypes()),
		StatusFilter:   normalizeStatusFilter(raw.StatusFilter),
		SortKey:        SortKey(strings.TrimSpace(raw.SortKey)),
		Page:           raw.Page,
		PageSize:       raw.PageSize,
	}

	if !c.SortKey.Valid() {
		c.SortKey = DefaultSortKey
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if c.PageSize < 1 {
		c.PageSize = opts.DefaultPageSize
		if c.PageSize < 1 {
			c.PageSize = DefaultPageSize
		}
	}
	if opts.MaxPageSize > 0 && c.PageSize > opts.MaxPageSize {
		c.PageSize = opts.MaxPageSize
	}

	return c
}

func normalizeFileType(value string, known []string) string {
	value = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))
	for _, ext := range known {
		if value == strings.ToLower(ext) {
			return value
		}
	}
	return All
}

func normalizeStatusFilter(value string) string {
	if status, ok := entities.ParseProjectStatus(value); ok {
		return string(status)
	}
	return All
}

// NormalizeStatus maps missing or unknown statuses to StatusInProgress
func NormalizeStatus(s entities.ProjectStatus) entities.ProjectStatus {
	if status, ok := entities.ParseProjectStatus(string(s)); ok {
		return status
	}
	return entities.StatusInProgress
}

// NormalizeProjects returns a copy of projects with canonical statuses
func NormalizeProjects(projects []entities.Project) []entities.Project {
	out := make([]entities.Project, len(projects))
	for i, p := range projects {
		p.Status = NormalizeStatus(p.Status)
		out[i] = p
	}
	return out
}
