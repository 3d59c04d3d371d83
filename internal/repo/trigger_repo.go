package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fedibbm/geoflow/internal/domain"
)

// TriggerRepo — репозиторий для работы с workflow_triggers.
type TriggerRepo struct {
	pool *pgxpool.Pool
}

// NewTriggerRepo создаёт новый TriggerRepo.
func NewTriggerRepo(pool *pgxpool.Pool) *TriggerRepo {
	return &TriggerRepo{pool: pool}
}

// Create сохраняет новый триггер.
func (r *TriggerRepo) Create(ctx context.Context, t *domain.WorkflowTrigger) error {
	inputJSON, err := json.Marshal(t.DefaultInput)
	if err != nil {
		return fmt.Errorf("marshal default_input: %w", err)
	}

	query := `
		INSERT INTO workflow_triggers (id, workflow_id, name, type, cron_expr, event_key,
		                               default_input, enabled, next_due_at, last_executed_at,
		                               execution_count, last_execution_status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.pool.Exec(ctx, query,
		t.ID,
		t.WorkflowID,
		nullString(t.Name),
		t.Type,
		nullString(t.CronExpr),
		nullString(t.EventKey),
		inputJSON,
		t.Enabled,
		t.NextDueAt,
		t.LastExecutedAt,
		t.ExecutionCount,
		nullString(t.LastExecutionStatus),
		nullString(t.CreatedBy),
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trigger: %w", err)
	}
	return nil
}

// Update сохраняет изменённый триггер.
func (r *TriggerRepo) Update(ctx context.Context, t *domain.WorkflowTrigger) error {
	inputJSON, err := json.Marshal(t.DefaultInput)
	if err != nil {
		return fmt.Errorf("marshal default_input: %w", err)
	}

	query := `
		UPDATE workflow_triggers
		SET name = $2, cron_expr = $3, event_key = $4, default_input = $5, enabled = $6,
		    next_due_at = $7, last_executed_at = $8, execution_count = $9, last_execution_status = $10
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		t.ID,
		nullString(t.Name),
		nullString(t.CronExpr),
		nullString(t.EventKey),
		inputJSON,
		t.Enabled,
		t.NextDueAt,
		t.LastExecutedAt,
		t.ExecutionCount,
		nullString(t.LastExecutionStatus),
	)
	if err != nil {
		return fmt.Errorf("update trigger: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get возвращает триггер по ID.
func (r *TriggerRepo) Get(ctx context.Context, id uuid.UUID) (*domain.WorkflowTrigger, error) {
	query := triggerSelect + ` WHERE id = $1`
	return scanTrigger(r.pool.QueryRow(ctx, query, id))
}

// ListByWorkflow возвращает триггеры одного workflow.
func (r *TriggerRepo) ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowTrigger, error) {
	query := triggerSelect + ` WHERE workflow_id = $1 ORDER BY created_at`
	return queryTriggers(ctx, r.pool, query, workflowID)
}

// ListDue возвращает включённые SCHEDULED-триггеры с next_due_at <= now.
func (r *TriggerRepo) ListDue(ctx context.Context, now time.Time) ([]domain.WorkflowTrigger, error) {
	query := triggerSelect + `
		WHERE enabled = TRUE AND type = $1 AND next_due_at IS NOT NULL AND next_due_at <= $2
		ORDER BY next_due_at
	`
	return queryTriggers(ctx, r.pool, query, domain.TriggerScheduled, now)
}

// ListEnabled возвращает включённые триггеры заданного типа.
func (r *TriggerRepo) ListEnabled(ctx context.Context, triggerType domain.TriggerType) ([]domain.WorkflowTrigger, error) {
	query := triggerSelect + ` WHERE enabled = TRUE AND type = $1 ORDER BY created_at`
	return queryTriggers(ctx, r.pool, query, triggerType)
}

// Delete удаляет триггер.
func (r *TriggerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflow_triggers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const triggerSelect = `
	SELECT id, workflow_id, name, type, cron_expr, event_key, default_input, enabled,
	       next_due_at, last_executed_at, execution_count, last_execution_status, created_by, created_at
	FROM workflow_triggers
`

func queryTriggers(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]domain.WorkflowTrigger, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []domain.WorkflowTrigger
	for rows.Next() {
		t, err := scanTrigger(rows)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, *t)
	}
	return triggers, rows.Err()
}

// scanTrigger сканирует строку workflow_triggers.
func scanTrigger(row pgx.Row) (*domain.WorkflowTrigger, error) {
	var t domain.WorkflowTrigger
	var name, cronExpr, eventKey, lastStatus, createdBy *string
	var inputJSON []byte

	err := row.Scan(
		&t.ID,
		&t.WorkflowID,
		&name,
		&t.Type,
		&cronExpr,
		&eventKey,
		&inputJSON,
		&t.Enabled,
		&t.NextDueAt,
		&t.LastExecutedAt,
		&t.ExecutionCount,
		&lastStatus,
		&createdBy,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan trigger: %w", err)
	}

	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &t.DefaultInput); err != nil {
			return nil, fmt.Errorf("unmarshal default_input: %w", err)
		}
	}
	if name != nil {
		t.Name = *name
	}
	if cronExpr != nil {
		t.CronExpr = *cronExpr
	}
	if eventKey != nil {
		t.EventKey = *eventKey
	}
	if lastStatus != nil {
		t.LastExecutionStatus = *lastStatus
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}

	return &t, nil
}
