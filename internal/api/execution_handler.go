package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/coordinator"
	"github.com/fedibbm/geoflow/internal/domain"
)

// ListExecutions возвращает список executions с фильтрацией.
// GET /api/v1/executions?workflow_id=...&status=...&limit=...
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	filter := domain.ExecutionFilter{Limit: 50}

	if workflowIDStr := r.URL.Query().Get("workflow_id"); workflowIDStr != "" {
		workflowID, err := uuid.Parse(workflowIDStr)
		if err != nil {
			BadRequest(w, "invalid workflow_id")
			return
		}
		filter.WorkflowID = workflowID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.ExecutionStatus(status)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		filter.Limit = int(mustParseInt(limitStr, 50))
	}

	executions, err := h.coordinator.ListExecutions(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ExecutionResponse, len(executions))
	for i := range executions {
		result[i] = ExecutionFromDomain(&executions[i])
	}

	List(w, result, len(result))
}

// StartExecution запускает workflow.
// POST /api/v1/workflows/{id}/executions
//
// Выполнение идёт в фоне; ответ — execution в статусе PENDING.
// С query-параметром wait=true запрос блокируется до терминального статуса.
func (h *Handler) StartExecution(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	var req StartExecutionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	startReq := coordinator.StartRequest{
		WorkflowID:  workflowID,
		Version:     req.Version,
		TriggeredBy: req.TriggeredBy,
		Input:       req.Input,
	}

	var exec *domain.WorkflowExecution
	if r.URL.Query().Get("wait") == "true" {
		exec, err = h.coordinator.StartExecution(r.Context(), startReq)
	} else {
		exec, err = h.coordinator.StartExecutionAsync(r.Context(), startReq)
	}
	if h.handleCoordinatorError(w, err) {
		return
	}

	Created(w, ExecutionFromDomain(exec))
}

// GetExecution возвращает execution по ID.
// GET /api/v1/executions/{id}
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	exec, err := h.coordinator.GetExecution(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "execution not found") {
		return
	}

	Success(w, ExecutionFromDomain(exec))
}

// TerminateExecution запрашивает завершение активного execution.
// POST /api/v1/executions/{id}/terminate
func (h *Handler) TerminateExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	var req TerminateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	if h.handleCoordinatorError(w, h.coordinator.Terminate(id, req.Reason)) {
		return
	}

	NoContent(w)
}

// PauseExecution приостанавливает активный execution между узлами.
// POST /api/v1/executions/{id}/pause
func (h *Handler) PauseExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	if h.handleCoordinatorError(w, h.coordinator.Pause(id)) {
		return
	}

	NoContent(w)
}

// ResumeExecution снимает паузу с execution.
// POST /api/v1/executions/{id}/resume
func (h *Handler) ResumeExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	if h.handleCoordinatorError(w, h.coordinator.Resume(id)) {
		return
	}

	NoContent(w)
}

// RestartExecution создаёт новый execution для завершившегося.
// POST /api/v1/executions/{id}/restart
func (h *Handler) RestartExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	var req StartExecutionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	exec, err := h.coordinator.Restart(r.Context(), id, req.TriggeredBy)
	if h.handleCoordinatorError(w, err) {
		return
	}

	Created(w, ExecutionFromDomain(exec))
}

// handleCoordinatorError преобразует ошибку координатора в HTTP ответ.
// Возвращает true, если ответ уже отправлен.
func (h *Handler) handleCoordinatorError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, coordinator.ErrWorkflowNotFound),
		errors.Is(err, coordinator.ErrVersionNotFound),
		errors.Is(err, coordinator.ErrExecutionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, coordinator.ErrExecutionNotActive),
		errors.Is(err, coordinator.ErrExecutionNotPaused),
		errors.Is(err, coordinator.ErrExecutionFinished):
		InvalidState(w, err.Error())
	default:
		InternalError(w, h.logger, err)
	}
	return true
}

// mustParseInt парсит строку в int с дефолтным значением.
func mustParseInt(s string, defaultVal int64) int64 {
	if n, err := json.Number(s).Int64(); err == nil {
		return n
	}
	return defaultVal
}
