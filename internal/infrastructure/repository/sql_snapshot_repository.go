package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	status_note TEXT NOT NULL DEFAULT '',
	owner_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS project_files (
	id TEXT PRIMARY KEY,
	project_id TEXT,
	original_file_name TEXT NOT NULL,
	file_extension TEXT NOT NULL DEFAULT '',
	storage_path TEXT NOT NULL DEFAULT '',
	download_status TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_project_files_project_id ON project_files(project_id);

CREATE TABLE IF NOT EXISTS attachment_files (
	id TEXT PRIMARY KEY,
	file_id TEXT NOT NULL,
	name TEXT NOT NULL,
	size BIGINT NOT NULL DEFAULT 0,
	mime_type TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_attachment_files_file_id ON attachment_files(file_id);
`

// SQLSnapshotRepository materializes the snapshot from the document tables.
// Files without a project_id are orphan files.
type SQLSnapshotRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLSnapshotRepository creates a SQL snapshot repository
func NewSQLSnapshotRepository(db *sql.DB, dialect Dialect) *SQLSnapshotRepository {
	return &SQLSnapshotRepository{db: db, dialect: dialect}
}

// Name identifies the source
func (r *SQLSnapshotRepository) Name() string {
	return string(repository.SnapshotSourceSQL)
}

// EnsureSchema creates the document tables when missing
func (r *SQLSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// Load reads projects, files and attachments in three queries
func (r *SQLSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	projects, err := r.loadProjects(ctx)
	if err != nil {
		return nil, err
	}

	attachments, err := r.loadAttachments(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, original_file_name, file_extension, storage_path, download_status, created_at
		FROM project_files
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query files: %v", repository.ErrSnapshotUnavailable, err)
	}
	defer rows.Close()

	var files []entities.File
	for rows.Next() {
		var f entities.File
		var projectID sql.NullString
		if err := rows.Scan(&f.ID, &projectID, &f.OriginalFileName, &f.FileExtension, &f.StoragePath, &f.DownloadStatus, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan file: %v", repository.ErrSnapshotMalformed, err)
		}
		f.ProjectID = projectID.String
		f.AttachmentFiles = attachments[f.ID]
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate files: %v", repository.ErrSnapshotUnavailable, err)
	}

	snap := groupFiles(projects, files)
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *SQLSnapshotRepository) loadProjects(ctx context.Context) ([]entities.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, status, status_note, owner_name, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query projects: %v", repository.ErrSnapshotUnavailable, err)
	}
	defer rows.Close()

	projects := []entities.Project{}
	for rows.Next() {
		var p entities.Project
		var status string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &status, &p.StatusNote, &p.OwnerName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan project: %v", repository.ErrSnapshotMalformed, err)
		}
		p.Status = entities.ProjectStatus(status)
		p.Files = []entities.File{}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate projects: %v", repository.ErrSnapshotUnavailable, err)
	}
	return projects, nil
}

func (r *SQLSnapshotRepository) loadAttachments(ctx context.Context) (map[string][]entities.AttachmentFile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_id, name, size, mime_type
		FROM attachment_files
		ORDER BY file_id, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query attachments: %v", repository.ErrSnapshotUnavailable, err)
	}
	defer rows.Close()

	byFile := make(map[string][]entities.AttachmentFile)
	for rows.Next() {
		var a entities.AttachmentFile
		var fileID string
		if err := rows.Scan(&a.ID, &fileID, &a.Name, &a.Size, &a.MimeType); err != nil {
			return nil, fmt.Errorf("%w: scan attachment: %v", repository.ErrSnapshotMalformed, err)
		}
		byFile[fileID] = append(byFile[fileID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate attachments: %v", repository.ErrSnapshotUnavailable, err)
	}
	return byFile, nil
}

// Import replaces the document tables with the given snapshot in one transaction
func (r *SQLSnapshotRepository) Import(ctx context.Context, snap *entities.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"attachment_files", "project_files", "projects"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertProject := r.dialect.rebind(`INSERT INTO projects
		(id, name, description, status, status_note, owner_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, p := range snap.Projects {
		updated := p.UpdatedAt
		if updated.IsZero() {
			updated = p.CreatedAt
		}
		if _, err := tx.ExecContext(ctx, insertProject,
			p.ID, p.Name, p.Description, string(p.Status), p.StatusNote, p.OwnerName, p.CreatedAt.UTC(), updated.UTC()); err != nil {
			return fmt.Errorf("failed to insert project %s: %w", p.ID, err)
		}
		for _, f := range p.Files {
			if err := r.insertFile(ctx, tx, f, sql.NullString{String: p.ID, Valid: true}); err != nil {
				return err
			}
		}
	}
	for _, f := range snap.OrphanFiles {
		if err := r.insertFile(ctx, tx, f, sql.NullString{}); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLSnapshotRepository) insertFile(ctx context.Context, tx *sql.Tx, f entities.File, projectID sql.NullString) error {
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, r.dialect.rebind(`INSERT INTO project_files
		(id, project_id, original_file_name, file_extension, storage_path, download_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		f.ID, projectID, f.OriginalFileName, f.FileExtension, f.StoragePath, f.DownloadStatus, createdAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert file %s: %w", f.ID, err)
	}

	for _, a := range f.AttachmentFiles {
		if _, err := tx.ExecContext(ctx, r.dialect.rebind(`INSERT INTO attachment_files
			(id, file_id, name, size, mime_type) VALUES (?, ?, ?, ?, ?)`),
			a.ID, f.ID, a.Name, a.Size, a.MimeType); err != nil {
			return fmt.Errorf("failed to insert attachment %s: %w", a.ID, err)
		}
	}
	return nil
}
