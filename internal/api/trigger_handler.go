package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/coordinator"
	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/scheduler"
)

// ListTriggers возвращает триггеры workflow.
// GET /api/v1/workflows/{id}/triggers
func (h *Handler) ListTriggers(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	triggers, err := h.triggers.ListByWorkflow(r.Context(), workflowID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TriggerResponse, len(triggers))
	for i := range triggers {
		result[i] = TriggerFromDomain(&triggers[i])
	}

	List(w, result, len(result))
}

// CreateTrigger создаёт триггер для workflow.
// POST /api/v1/workflows/{id}/triggers
func (h *Handler) CreateTrigger(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	var req CreateTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Workflow должен существовать
	if _, err := h.workflows.GetWorkflow(r.Context(), workflowID); err != nil {
		HandleRepoError(w, h.logger, err, "workflow not found")
		return
	}

	now := time.Now()
	trigger := &domain.WorkflowTrigger{
		ID:           uuid.New(),
		WorkflowID:   workflowID,
		Name:         req.Name,
		Type:         domain.TriggerType(req.Type),
		CronExpr:     req.CronExpr,
		EventKey:     req.EventKey,
		DefaultInput: req.DefaultInput,
		Enabled:      req.Enabled,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    now,
	}

	switch trigger.Type {
	case domain.TriggerScheduled:
		if err := scheduler.ValidateCronExpr(trigger.CronExpr); err != nil {
			BadRequest(w, err.Error())
			return
		}
		next, err := scheduler.NextRun(trigger.CronExpr, now)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		trigger.NextDueAt = &next
	case domain.TriggerEvent:
		if trigger.EventKey == "" {
			BadRequest(w, "event_key is required for EVENT triggers")
			return
		}
	case domain.TriggerWebhook, domain.TriggerManual:
		// Без дополнительных полей
	default:
		BadRequest(w, "unknown trigger type: "+req.Type)
		return
	}

	if err := h.triggers.Create(r.Context(), trigger); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
	}

	Created(w, TriggerFromDomain(trigger))
}

// GetTrigger возвращает триггер по ID.
// GET /api/v1/triggers/{id}
func (h *Handler) GetTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	trigger, err := h.triggers.Get(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "trigger not found") {
		return
	}

	Success(w, TriggerFromDomain(trigger))
}

// SetTriggerEnabled включает или выключает триггер.
// PUT /api/v1/triggers/{id}/enabled
func (h *Handler) SetTriggerEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	trigger, err := h.triggers.Get(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "trigger not found") {
		return
	}

	trigger.Enabled = req.Enabled

	// Включённый SCHEDULED-триггер должен получить свежий next_due_at,
	// иначе он сработает немедленно по устаревшему времени
	if req.Enabled && trigger.Type == domain.TriggerScheduled {
		if next, err := scheduler.NextRun(trigger.CronExpr, time.Now()); err == nil {
			trigger.NextDueAt = &next
		}
	}

	if err := h.triggers.Update(r.Context(), trigger); err != nil {
		if HandleRepoError(w, h.logger, err, "trigger not found") {
			return
		}
	}

	Success(w, TriggerFromDomain(trigger))
}

// FireTrigger запускает workflow по WEBHOOK-триггеру.
// POST /api/v1/triggers/{id}/fire
//
// Тело запроса — произвольный JSON-объект; его ключи накладываются
// на default_input триггера и имеют приоритет.
func (h *Handler) FireTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	trigger, err := h.triggers.Get(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "trigger not found") {
		return
	}

	if trigger.Type != domain.TriggerWebhook {
		InvalidState(w, "trigger is not a WEBHOOK trigger")
		return
	}
	if !trigger.Enabled {
		InvalidState(w, "trigger is disabled")
		return
	}

	var payload map[string]any
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	exec, err := h.coordinator.StartExecutionAsync(r.Context(), coordinator.StartRequest{
		WorkflowID:  trigger.WorkflowID,
		TriggeredBy: "webhook:" + trigger.ID.String(),
		Input:       domain.MergeInput(trigger.DefaultInput, payload),
	})
	if h.handleCoordinatorError(w, err) {
		return
	}

	trigger.MarkFired("REQUESTED", nil)
	if err := h.triggers.Update(r.Context(), trigger); err != nil {
		h.logger.Warn("failed to update webhook trigger bookkeeping",
			"trigger_id", trigger.ID,
			"error", err,
		)
	}

	Created(w, ExecutionFromDomain(exec))
}

// DeleteTrigger удаляет триггер.
// DELETE /api/v1/triggers/{id}
func (h *Handler) DeleteTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	if err := h.triggers.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "trigger not found") {
			return
		}
	}

	NoContent(w)
}
