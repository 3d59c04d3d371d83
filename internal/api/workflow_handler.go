package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/engine"
)

// ListWorkflows возвращает все workflows.
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.workflows.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkflowResponse, len(workflows))
	for i := range workflows {
		result[i] = WorkflowFromDomain(&workflows[i])
	}

	List(w, result, len(result))
}

// CreateWorkflow создаёт workflow с первой версией графа.
// POST /api/v1/workflows
func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	now := time.Now()
	wf := &domain.WorkflowDefinition{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		ProjectID:      req.ProjectID,
		CurrentVersion: 1,
		Versions: []domain.WorkflowVersion{{
			Version:   1,
			Nodes:     req.Nodes,
			Edges:     req.Edges,
			CreatedBy: req.CreatedBy,
			CreatedAt: now,
		}},
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	wf.Versions[0].WorkflowID = wf.ID

	// Граф проверяется до записи: битый workflow не должен попасть в БД
	if err := engine.Validate(&wf.Versions[0], nil); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if err := h.workflows.Create(r.Context(), wf); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
	}

	Created(w, WorkflowFromDomain(wf))
}

// GetWorkflow возвращает workflow с версиями.
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflows.GetWorkflow(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	Success(w, WorkflowFromDomain(wf))
}

// ListWorkflowVersions возвращает версии workflow.
// GET /api/v1/workflows/{id}/versions
func (h *Handler) ListWorkflowVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflows.GetWorkflow(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	result := make([]VersionResponse, len(wf.Versions))
	for i, v := range wf.Versions {
		result[i] = VersionFromDomain(v)
	}

	List(w, result, len(result))
}

// CreateWorkflowVersion создаёт новую версию графа workflow.
// POST /api/v1/workflows/{id}/versions
func (h *Handler) CreateWorkflowVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	var req CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	candidate := domain.WorkflowVersion{
		WorkflowID: id,
		Nodes:      req.Nodes,
		Edges:      req.Edges,
		Changelog:  req.Changelog,
		CreatedBy:  req.CreatedBy,
		CreatedAt:  time.Now(),
	}
	if err := engine.Validate(&candidate, nil); err != nil {
		BadRequest(w, err.Error())
		return
	}

	version, err := h.workflows.CreateVersion(r.Context(), id, candidate)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	// Координатор не должен запускать устаревший current_version
	h.invalidateWorkflow(id)

	Created(w, VersionFromDomain(*version))
}

// DeleteWorkflow удаляет workflow.
// DELETE /api/v1/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	if err := h.workflows.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "workflow not found") {
			return
		}
	}

	h.invalidateWorkflow(id)

	NoContent(w)
}
