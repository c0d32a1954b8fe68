package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/export"
	"github.com/yectos/projects-api/internal/service"
	"github.com/yectos/projects-api/internal/stats"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get the caller's projects, filtered, sorted and paginated. Derived status and progress are computed per project.
// @Tags Projects
// @Produce json
// @Param search query string false "Case-insensitive match on name, client or description"
// @Param status query string false "Comma separated statuses" example(in_progress,on_hold)
// @Param tags query string false "Comma separated tags; a project matches when it has any of them"
// @Param priority query string false "Comma separated priorities" example(high,medium)
// @Param sortBy query string false "Sort field" Enums(name, client, totalCost, amountPaid, createdAt, updatedAt, progress) default(createdAt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.projectService.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func parseListParams(r *http.Request) (service.ListParams, error) {
	q := r.URL.Query()
	params := service.ListParams{
		Filter:   stats.Filter{Search: q.Get("search"), Tags: splitCSV(q.Get("tags"))},
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "pageSize"),
	}

	for _, raw := range splitCSV(q.Get("status")) {
		status := domain.ProjectStatus(raw)
		if !status.IsValid() {
			return params, fmt.Errorf("invalid status %q", raw)
		}
		params.Filter.Statuses = append(params.Filter.Statuses, status)
	}

	for _, raw := range splitCSV(q.Get("priority")) {
		priority := domain.ProjectPriority(raw)
		if !priority.IsValid() {
			return params, fmt.Errorf("invalid priority %q", raw)
		}
		params.Filter.Priorities = append(params.Filter.Priorities, priority)
	}

	if raw := q.Get("sortBy"); raw != "" {
		field, err := stats.ParseSortField(raw)
		if err != nil {
			return params, err
		}
		params.SortBy = field
	}
	if raw := q.Get("sortOrder"); raw != "" {
		dir, err := stats.ParseSortDirection(raw)
		if err != nil {
			return params, err
		}
		params.SortOrder = dir
	}

	return params, nil
}

// Create godoc
// @Summary Create project
// @Description Create a new project. Stage order follows the list order; missing stage ids are generated.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// GetByID godoc
// @Summary Get project by ID
// @Description Get one of the caller's projects with progress, effective status and pending amount
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Update godoc
// @Summary Update project
// @Description Replace the editable fields of a project. The stage list is replaced as a whole.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Description Permanently delete a project with its stages and activity log
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		h.handleProjectError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetActivities godoc
// @Summary Project activity log
// @Description Newest activity entries of a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param limit query int false "Maximum entries (max 200)" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/activities [get]
func (h *ProjectHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	activities, err := h.projectService.Activities(r.Context(), id, queryInt(r, "limit"))
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// Tags godoc
// @Summary List tags
// @Description Distinct tags used across the caller's projects, sorted
// @Tags Projects
// @Produce json
// @Success 200 {array} string
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/tags [get]
func (h *ProjectHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.projectService.Tags(r.Context())
	if err != nil {
		h.handleProjectError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

// Export godoc
// @Summary Export projects
// @Description Download all of the caller's projects as a JSON or YAML document
// @Tags Projects
// @Produce json
// @Produce application/yaml
// @Param format query string false "Document format" Enums(json, yaml) default(json)
// @Success 200 {object} export.Document
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/export [get]
func (h *ProjectHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.projectService.Export(r.Context())
	if err != nil {
		h.handleProjectError(w, err)
		return
	}

	filename := "projects-" + doc.ExportedAt.Format("2006-01-02") + format.Extension()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.Encode(w, doc, format); err != nil {
		h.logger.Error("failed to write export", zap.Error(err))
	}
}

func (h *ProjectHandler) handleProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondWithError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, service.ErrAmountPaidExceedsTotal):
		respondWithError(w, http.StatusBadRequest, "Amount paid cannot exceed total cost")
	case errors.Is(err, service.ErrNegativeAmount):
		respondWithError(w, http.StatusBadRequest, "Amounts must not be negative")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		h.logger.Error("project handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
