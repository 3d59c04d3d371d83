package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fedibbm/geoflow/internal/domain"
)

// ExecutionRepo — репозиторий для работы с executions.
//
// Журнал и результаты хранятся как JSONB: execution читается и пишется
// целиком, построчная запись журнала движку не нужна.
type ExecutionRepo struct {
	pool *pgxpool.Pool
}

// NewExecutionRepo создаёт новый ExecutionRepo.
func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

// CreateExecution сохраняет новый execution.
func (r *ExecutionRepo) CreateExecution(ctx context.Context, exec *domain.WorkflowExecution) error {
	inputJSON, logsJSON, resultsJSON, err := marshalExecutionBlobs(exec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO executions (id, workflow_id, version, status, triggered_by, project_id,
		                        input, started_at, completed_at, logs, results, error, restart_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.pool.Exec(ctx, query,
		exec.ID,
		exec.WorkflowID,
		exec.Version,
		exec.Status,
		nullString(exec.TriggeredBy),
		nullString(exec.ProjectID),
		inputJSON,
		exec.StartedAt,
		exec.CompletedAt,
		logsJSON,
		resultsJSON,
		nullString(exec.Error),
		exec.RestartOf,
		exec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// UpdateExecution сохраняет изменённый execution.
func (r *ExecutionRepo) UpdateExecution(ctx context.Context, exec *domain.WorkflowExecution) error {
	_, logsJSON, resultsJSON, err := marshalExecutionBlobs(exec)
	if err != nil {
		return err
	}

	query := `
		UPDATE executions
		SET status = $2, started_at = $3, completed_at = $4, logs = $5, results = $6, error = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		exec.ID,
		exec.Status,
		exec.StartedAt,
		exec.CompletedAt,
		logsJSON,
		resultsJSON,
		nullString(exec.Error),
	)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetExecution возвращает execution по ID.
func (r *ExecutionRepo) GetExecution(ctx context.Context, id uuid.UUID) (*domain.WorkflowExecution, error) {
	query := executionSelect + ` WHERE id = $1`
	return scanExecution(r.pool.QueryRow(ctx, query, id))
}

// ListExecutions возвращает executions по фильтру, новые первыми.
func (r *ExecutionRepo) ListExecutions(ctx context.Context, filter domain.ExecutionFilter) ([]domain.WorkflowExecution, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := executionSelect + `
		WHERE ($1::uuid IS NULL OR workflow_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.WorkflowID),
		nullString(string(filter.Status)),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []domain.WorkflowExecution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, *exec)
	}
	return executions, rows.Err()
}

const executionSelect = `
	SELECT id, workflow_id, version, status, triggered_by, project_id,
	       input, started_at, completed_at, logs, results, error, restart_of, created_at
	FROM executions
`

// marshalExecutionBlobs сериализует JSONB-поля execution.
func marshalExecutionBlobs(exec *domain.WorkflowExecution) (input, logs, results []byte, err error) {
	input, err = json.Marshal(exec.Input)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal input: %w", err)
	}
	logs, err = json.Marshal(exec.Logs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal logs: %w", err)
	}
	results, err = json.Marshal(exec.Results)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal results: %w", err)
	}
	return input, logs, results, nil
}

// scanExecution сканирует строку executions.
func scanExecution(row pgx.Row) (*domain.WorkflowExecution, error) {
	var exec domain.WorkflowExecution
	var triggeredBy, projectID, execError *string
	var inputJSON, logsJSON, resultsJSON []byte

	err := row.Scan(
		&exec.ID,
		&exec.WorkflowID,
		&exec.Version,
		&exec.Status,
		&triggeredBy,
		&projectID,
		&inputJSON,
		&exec.StartedAt,
		&exec.CompletedAt,
		&logsJSON,
		&resultsJSON,
		&execError,
		&exec.RestartOf,
		&exec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan execution: %w", err)
	}

	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &exec.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input: %w", err)
		}
	}
	if logsJSON != nil {
		if err := json.Unmarshal(logsJSON, &exec.Logs); err != nil {
			return nil, fmt.Errorf("unmarshal logs: %w", err)
		}
	}
	if resultsJSON != nil {
		if err := json.Unmarshal(resultsJSON, &exec.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}

	if triggeredBy != nil {
		exec.TriggeredBy = *triggeredBy
	}
	if projectID != nil {
		exec.ProjectID = *projectID
	}
	if execError != nil {
		exec.Error = *execError
	}

	return &exec, nil
}
