package entities

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus is the review state of a project
type ProjectStatus string

// Canonical status values as stored by the document service.
const (
	StatusInProgress ProjectStatus = "กำลังดำเนินการ"
	StatusApproved   ProjectStatus = "อนุมัติ"
	StatusRejected   ProjectStatus = "ไม่อนุมัติ"
	StatusEdit       ProjectStatus = "แก้ไข"
	StatusClosed     ProjectStatus = "ปิดโครงการ"
)

// DownloadStatusDone marks a file whose generation has finished
const DownloadStatusDone = "done"

var statusNames = map[string]ProjectStatus{
	"IN_PROGRESS": StatusInProgress,
	"APPROVED":    StatusApproved,
	"REJECTED":    StatusRejected,
	"EDIT":        StatusEdit,
	"CLOSED":      StatusClosed,
}

// AllStatuses lists the statuses in display order
func AllStatuses() []ProjectStatus {
	return []ProjectStatus{StatusInProgress, StatusApproved, StatusRejected, StatusEdit, StatusClosed}
}

// ParseProjectStatus accepts a canonical value or an enum name such as "APPROVED".
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	s = strings.TrimSpace(s)
	for _, status := range AllStatuses() {
		if string(status) == s {
			return status, true
		}
	}
	if status, ok := statusNames[strings.ToUpper(s)]; ok {
		return status, true
	}
	return "", false
}

// Name returns the enum name of the status, or "" for unknown values
func (s ProjectStatus) Name() string {
	for name, status := range statusNames {
		if status == s {
			return name
		}
	}
	return ""
}

// AttachmentFile is a sub-attachment shown next to a generated file
type AttachmentFile struct {
	ID       string `json:"id" db:"id" bson:"id"`
	Name     string `json:"name" db:"name" bson:"name"`
	Size     int64  `json:"size" db:"size" bson:"size"`
	MimeType string `json:"mimeType" db:"mime_type" bson:"mimeType"`
}

// File is a document that belongs to at most one project
type File struct {
	ID               string           `json:"id" db:"id" bson:"_id"`
	ProjectID        string           `json:"projectId,omitempty" db:"project_id" bson:"projectId,omitempty"`
	OriginalFileName string           `json:"originalFileName" db:"original_file_name" bson:"originalFileName"`
	FileExtension    string           `json:"fileExtension" db:"file_extension" bson:"fileExtension"`
	StoragePath      string           `json:"storagePath" db:"storage_path" bson:"storagePath"`
	DownloadStatus   string           `json:"downloadStatus" db:"download_status" bson:"downloadStatus"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at" bson:"createdAt"`
	AttachmentFiles  []AttachmentFile `json:"attachmentFiles,omitempty" db:"-" bson:"attachmentFiles,omitempty"`
}

// IsDone reports whether the file finished generating
func (f File) IsDone() bool {
	return f.DownloadStatus == DownloadStatusDone
}

// Project groups the documents a user uploaded or generated
type Project struct {
	ID          string        `json:"id" db:"id" bson:"_id"`
	Name        string        `json:"name" db:"name" bson:"name"`
	Description string        `json:"description,omitempty" db:"description" bson:"description,omitempty"`
	Status      ProjectStatus `json:"status" db:"status" bson:"status"`
	StatusNote  string        `json:"statusNote,omitempty" db:"status_note" bson:"statusNote,omitempty"`
	OwnerName   string        `json:"ownerName" db:"owner_name" bson:"ownerName"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	Files       []File        `json:"files" db:"-" bson:"-"`
}

// CountFiles counts the files accepted by match
func (p Project) CountFiles(match func(File) bool) int {
	n := 0
	for _, f := range p.Files {
		if match(f) {
			n++
		}
	}
	return n
}

// ValidationResult represents the result of record validation
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Validate checks the fields a loader needs before handing the record on
func (p *Project) Validate() ValidationResult {
	var errors []string

	if strings.TrimSpace(p.ID) == "" {
		errors = append(errors, "Project ID cannot be empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		errors = append(errors, "Project name cannot be empty")
	}
	for i, f := range p.Files {
		if f.ID == "" {
			errors = append(errors, fmt.Sprintf("File %d has no ID", i))
		}
	}

	return ValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}
