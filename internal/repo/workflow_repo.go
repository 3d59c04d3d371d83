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

// WorkflowRepo — репозиторий для работы с workflows и workflow_versions.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepo создаёт новый WorkflowRepo.
func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

// Create создаёт новый workflow вместе с первой версией.
func (r *WorkflowRepo) Create(ctx context.Context, wf *domain.WorkflowDefinition) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workflows (id, name, description, project_id, current_version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		wf.ID,
		wf.Name,
		nullString(wf.Description),
		nullString(wf.ProjectID),
		wf.CurrentVersion,
		nullString(wf.CreatedBy),
		wf.CreatedAt,
		wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}

	for i := range wf.Versions {
		if err := insertVersion(ctx, tx, &wf.Versions[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetWorkflow возвращает workflow со всеми версиями.
func (r *WorkflowRepo) GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, description, project_id, current_version, created_by, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`
	wf, err := scanWorkflow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	versions, err := r.listVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	wf.Versions = versions

	return wf, nil
}

// GetByName возвращает workflow по имени (без версий).
func (r *WorkflowRepo) GetByName(ctx context.Context, name string) (*domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, description, project_id, current_version, created_by, created_at, updated_at
		FROM workflows
		WHERE name = $1
	`
	return scanWorkflow(r.pool.QueryRow(ctx, query, name))
}

// List возвращает все workflows (без версий).
func (r *WorkflowRepo) List(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	query := `
		SELECT id, name, description, project_id, current_version, created_by, created_at, updated_at
		FROM workflows
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []domain.WorkflowDefinition
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	return workflows, rows.Err()
}

// CreateVersion добавляет новую версию workflow и делает её актуальной.
// Номер версии инкрементируется автоматически.
func (r *WorkflowRepo) CreateVersion(ctx context.Context, workflowID uuid.UUID, version domain.WorkflowVersion) (*domain.WorkflowVersion, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextVersion int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM workflow_versions
		WHERE workflow_id = $1
	`, workflowID).Scan(&nextVersion)
	if err != nil {
		return nil, fmt.Errorf("get next version: %w", err)
	}

	version.WorkflowID = workflowID
	version.Version = nextVersion
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now()
	}

	if err := insertVersion(ctx, tx, &version); err != nil {
		return nil, err
	}

	result, err := tx.Exec(ctx, `
		UPDATE workflows
		SET current_version = $2, updated_at = NOW()
		WHERE id = $1
	`, workflowID, nextVersion)
	if err != nil {
		return nil, fmt.Errorf("update current version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &version, nil
}

// Delete удаляет workflow (каскадно удалит versions и triggers).
func (r *WorkflowRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// listVersions возвращает версии workflow по возрастанию номера.
func (r *WorkflowRepo) listVersions(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error) {
	query := `
		SELECT workflow_id, version, nodes, edges, changelog, created_by, created_at
		FROM workflow_versions
		WHERE workflow_id = $1
		ORDER BY version ASC
	`
	rows, err := r.pool.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list workflow versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.WorkflowVersion
	for rows.Next() {
		var v domain.WorkflowVersion
		var nodesJSON, edgesJSON []byte
		var changelog, createdBy *string

		if err := rows.Scan(
			&v.WorkflowID,
			&v.Version,
			&nodesJSON,
			&edgesJSON,
			&changelog,
			&createdBy,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workflow version: %w", err)
		}

		if err := json.Unmarshal(nodesJSON, &v.Nodes); err != nil {
			return nil, fmt.Errorf("unmarshal nodes: %w", err)
		}
		if edgesJSON != nil {
			if err := json.Unmarshal(edgesJSON, &v.Edges); err != nil {
				return nil, fmt.Errorf("unmarshal edges: %w", err)
			}
		}
		if changelog != nil {
			v.Changelog = *changelog
		}
		if createdBy != nil {
			v.CreatedBy = *createdBy
		}

		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// insertVersion вставляет версию в рамках транзакции.
func insertVersion(ctx context.Context, tx pgx.Tx, v *domain.WorkflowVersion) error {
	nodesJSON, err := json.Marshal(v.Nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(v.Edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workflow_versions (workflow_id, version, nodes, edges, changelog, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		v.WorkflowID,
		v.Version,
		nodesJSON,
		edgesJSON,
		nullString(v.Changelog),
		nullString(v.CreatedBy),
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow version: %w", err)
	}
	return nil
}

// scanWorkflow сканирует строку workflows.
func scanWorkflow(row pgx.Row) (*domain.WorkflowDefinition, error) {
	var wf domain.WorkflowDefinition
	var description, projectID, createdBy *string

	err := row.Scan(
		&wf.ID,
		&wf.Name,
		&description,
		&projectID,
		&wf.CurrentVersion,
		&createdBy,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workflow: %w", err)
	}

	if description != nil {
		wf.Description = *description
	}
	if projectID != nil {
		wf.ProjectID = *projectID
	}
	if createdBy != nil {
		wf.CreatedBy = *createdBy
	}

	return &wf, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
