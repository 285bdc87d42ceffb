package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
	"github.com/zots0127/docdesk/pkg/listquery"
	"github.com/zots0127/docdesk/pkg/metrics"
)

// ProjectView is a listed project decorated for display
type ProjectView struct {
	entities.Project
	IsNew     bool `json:"isNew"`
	DoneFiles int  `json:"doneFiles"`
}

// ProjectPage is one page of the project list
type ProjectPage struct {
	Items      []ProjectView      `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	TotalItems int                `json:"totalItems"`
	StartIndex int                `json:"startIndex"`
	EndIndex   int                `json:"endIndex"`
	Criteria   listquery.Criteria `json:"criteria"`
}

// StatusOption is one entry of the status dropdown
type StatusOption struct {
	Value entities.ProjectStatus `json:"value"`
	Name  string                 `json:"name"`
}

// CriteriaOptions lists the values the list screen offers
type CriteriaOptions struct {
	SortKeys        []listquery.SortKey `json:"sortKeys"`
	Statuses        []StatusOption      `json:"statuses"`
	FileTypes       []string            `json:"fileTypes"`
	DefaultPageSize int                 `json:"defaultPageSize"`
	MaxPageSize     int                 `json:"maxPageSize"`
}

// ProjectListUseCase serves the project list screens
type ProjectListUseCase struct {
	snapshots repository.SnapshotRepository
	viewed    repository.ViewedRepository
	logger    logrus.FieldLogger

	mu   sync.RWMutex
	opts listquery.Options
}

// NewProjectListUseCase creates a new project list use case
func NewProjectListUseCase(
	snapshots repository.SnapshotRepository,
	viewed repository.ViewedRepository,
	opts listquery.Options,
	logger logrus.FieldLogger,
) *ProjectListUseCase {
	return &ProjectListUseCase{
		snapshots: snapshots,
		viewed:    viewed,
		opts:      opts,
		logger:    logger.WithField("component", "project_list"),
	}
}

// SetOptions replaces the pipeline options, e.g. after a config reload
func (uc *ProjectListUseCase) SetOptions(opts listquery.Options) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.opts = opts
}

func (uc *ProjectListUseCase) options() listquery.Options {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.opts
}

func (uc *ProjectListUseCase) load(ctx context.Context) (*entities.Snapshot, error) {
	snap, err := uc.snapshots.Load(ctx)
	metrics.RecordSnapshotLoad(uc.snapshots.Name(), err)
	if err != nil {
		return nil, fmt.Errorf("load snapshot from %s: %w", uc.snapshots.Name(), err)
	}
	return snap, nil
}

// List runs the query pipeline over the current snapshot
func (uc *ProjectListUseCase) List(ctx context.Context, raw listquery.RawCriteria) (*ProjectPage, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := listquery.Run(snap.Projects, raw, uc.options())
	metrics.RecordPipeline(time.Since(start), len(snap.Projects), result.Matched, len(result.Items))

	ids := make([]string, len(result.Items))
	for i, p := range result.Items {
		ids[i] = p.ID
	}
	viewed, err := uc.viewed.ViewedSet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load viewed marks: %w", err)
	}

	items := make([]ProjectView, len(result.Items))
	for i, p := range result.Items {
		items[i] = newProjectView(p, !viewed[p.ID])
	}

	uc.logger.WithFields(logrus.Fields{
		"search":  result.Criteria.SearchTerm,
		"type":    result.Criteria.FileTypeFilter,
		"status":  result.Criteria.StatusFilter,
		"sort":    result.Criteria.SortKey,
		"page":    result.Page.Page,
		"matched": result.Matched,
	}).Debug("Project list computed")

	return &ProjectPage{
		Items:      items,
		Page:       result.Page.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
		TotalItems: result.TotalItems,
		StartIndex: result.StartIndex,
		EndIndex:   result.EndIndex,
		Criteria:   result.Criteria,
	}, nil
}

// Get returns one project by id
func (uc *ProjectListUseCase) Get(ctx context.Context, id string) (*ProjectView, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	project, ok := snap.FindProject(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrProjectNotFound, id)
	}

	viewed, err := uc.viewed.IsViewed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load viewed mark: %w", err)
	}

	project.Status = listquery.NormalizeStatus(project.Status)
	view := newProjectView(project, !viewed)
	return &view, nil
}

// OrphanFiles returns files without a project, newest first
func (uc *ProjectListUseCase) OrphanFiles(ctx context.Context) ([]entities.File, error) {
	snap, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]entities.File, len(snap.OrphanFiles))
	copy(files, snap.OrphanFiles)
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// MarkViewed clears the "new" badge of an existing project
func (uc *ProjectListUseCase) MarkViewed(ctx context.Context, id string) error {
	snap, err := uc.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.FindProject(id); !ok {
		return fmt.Errorf("%w: %s", repository.ErrProjectNotFound, id)
	}

	if err := uc.viewed.MarkViewed(ctx, id); err != nil {
		return fmt.Errorf("mark viewed: %w", err)
	}
	uc.logger.WithField("project_id", id).Debug("Project marked viewed")
	return nil
}

// Options returns the dropdown values of the list screen
func (uc *ProjectListUseCase) Options() CriteriaOptions {
	opts := uc.options()

	statuses := make([]StatusOption, 0, len(entities.AllStatuses()))
	for _, s := range entities.AllStatuses() {
		statuses = append(statuses, StatusOption{Value: s, Name: s.Name()})
	}

	fileTypes := opts.FileTypes
	if len(fileTypes) == 0 {
		fileTypes = listquery.DefaultFileTypes
	}

	return CriteriaOptions{
		SortKeys:        listquery.SortKeys(),
		Statuses:        statuses,
		FileTypes:       append([]string(nil), fileTypes...),
		DefaultPageSize: listquery.Normalize(listquery.RawCriteria{}, opts).PageSize,
		MaxPageSize:     opts.MaxPageSize,
	}
}

func newProjectView(p entities.Project, isNew bool) ProjectView {
	return ProjectView{
		Project:   p,
		IsNew:     isNew,
		DoneFiles: p.CountFiles(entities.File.IsDone),
	}
}
