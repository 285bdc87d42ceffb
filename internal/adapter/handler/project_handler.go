package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zots0127/docdesk/internal/domain/repository"
	"github.com/zots0127/docdesk/internal/usecase"
	"github.com/zots0127/docdesk/pkg/listquery"
)

// ProjectHandler serves the project list API
type ProjectHandler struct {
	projects *usecase.ProjectListUseCase
	logger   logrus.FieldLogger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *usecase.ProjectListUseCase, logger logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger.WithField("component", "project_handler"),
	}
}

// RegisterRoutes registers the project routes under group
func (h *ProjectHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/projects", h.ListProjects)
	group.GET("/projects/:id", h.GetProject)
	group.POST("/projects/:id/viewed", h.MarkViewed)
	group.GET("/orphan-files", h.ListOrphanFiles)
	group.GET("/criteria", h.GetCriteria)
}

// ListProjects returns one page of filtered, sorted projects
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param search query string false "Search term"
// @Param fileType query string false "File extension or ALL"
// @Param status query string false "Status value or ALL"
// @Param sort query string false "Sort key"
// @Param page query int false "1-based page"
// @Param pageSize query int false "Items per page"
// @Success 200 {object} usecase.ProjectPage
// @Router /api/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var raw listquery.RawCriteria
	if err := c.ShouldBindQuery(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}

	page, err := h.projects.List(c.Request.Context(), raw)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProject returns one project with its "new" flag
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} usecase.ProjectView
// @Failure 404 {object} map[string]string
// @Router /api/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	view, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MarkViewed records that the current user opened a project
// @Summary Mark project viewed
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/projects/{id}/viewed [post]
func (h *ProjectHandler) MarkViewed(c *gin.Context) {
	if err := h.projects.MarkViewed(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOrphanFiles returns files not attached to any project
// @Summary List orphan files
// @Tags Projects
// @Produce json
// @Router /api/orphan-files [get]
func (h *ProjectHandler) ListOrphanFiles(c *gin.Context) {
	files, err := h.projects.OrphanFiles(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphanFiles": files})
}

// GetCriteria returns the dropdown options of the list screen
func (h *ProjectHandler) GetCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, h.projects.Options())
}

func (h *ProjectHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrSnapshotUnavailable):
		h.logger.WithError(err).Warn("Snapshot unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("Project request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
