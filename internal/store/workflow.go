package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/model"
)

const (
	templateColumns = `id, engine_workflow_id, name, definition, created_at, updated_at`
	workflowColumns = `id, engine_workflow_id, tenant_id, parent_workflow_id, name, active, folder_name, definition, created_at, updated_at`
)

// WorkflowStore persists catalog templates and tenant workflows. Both live in
// the workflows table, told apart by is_template.
type WorkflowStore struct {
	db DB
}

func NewWorkflowStore(db DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

// GetTemplate looks a template up by local ID or engine workflow ID.
func (s *WorkflowStore) GetTemplate(ctx context.Context, ref string) (*model.WorkflowTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM workflows
		 WHERE is_template AND (id = $1 OR engine_workflow_id = $1)
		 ORDER BY (id = $1) DESC
		 LIMIT 1`, ref,
	))
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("get template %s", ref), "template not found")
	}
	return t, nil
}

func (s *WorkflowStore) ListTemplates(ctx context.Context) ([]model.WorkflowTemplate, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+templateColumns+` FROM workflows WHERE is_template ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.WorkflowTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// UpsertTemplate inserts or refreshes a template keyed by engine workflow ID
// and reports whether a row was created. An existing row is always forced
// back to template shape: no tenant, no parent, inactive.
func (s *WorkflowStore) UpsertTemplate(ctx context.Context, t *model.WorkflowTemplate) (bool, error) {
	var created bool
	err := s.db.QueryRow(ctx,
		`INSERT INTO workflows (id, engine_workflow_id, name, is_template, active, definition, created_at, updated_at)
		 VALUES ($1, $2, $3, true, false, $4, now(), now())
		 ON CONFLICT (engine_workflow_id) DO UPDATE
		 SET name = EXCLUDED.name,
		     definition = EXCLUDED.definition,
		     is_template = true,
		     tenant_id = NULL,
		     parent_workflow_id = NULL,
		     active = false,
		     updated_at = now()
		 RETURNING id, (xmax = 0)`,
		t.ID, t.EngineWorkflowID, t.Name, definitionArg(t.Definition),
	).Scan(&t.ID, &created)
	if err != nil {
		return false, fmt.Errorf("upsert template %s: %w", t.EngineWorkflowID, err)
	}
	return created, nil
}

func (s *WorkflowStore) GetByID(ctx context.Context, id string) (*model.TenantWorkflow, error) {
	w, err := scanWorkflow(s.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = $1 AND NOT is_template`, id,
	))
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("get workflow %s", id), "workflow not found")
	}
	return w, nil
}

// GetByTenantAndName loads the tenant's workflow with the given derived name.
func (s *WorkflowStore) GetByTenantAndName(ctx context.Context, tenantID, name string) (*model.TenantWorkflow, error) {
	w, err := scanWorkflow(s.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE tenant_id = $1 AND name = $2`, tenantID, name,
	))
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("get workflow %q for tenant %s", name, tenantID), "workflow not found")
	}
	return w, nil
}

// Insert stores a new tenant workflow. A unique violation on (tenant_id, name)
// or on the engine ID comes back as apperr.EStoreConflict.
func (s *WorkflowStore) Insert(ctx context.Context, w *model.TenantWorkflow) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO workflows (`+workflowColumns+`, is_template)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)`,
		w.ID, w.EngineWorkflowID, w.TenantID, w.ParentWorkflowID, w.Name, w.Active, w.FolderName,
		definitionArg(w.Definition), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.EStoreConflict, "insert workflow", fmt.Sprintf("workflow %q already exists", w.Name), err)
		}
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// ReplaceClone points an inactive workflow at a fresh engine copy. The update
// only applies while the row is still inactive and still references
// prevEngineID; otherwise apperr.EStoreConflict is returned.
func (s *WorkflowStore) ReplaceClone(ctx context.Context, id, prevEngineID, engineID string, definition json.RawMessage, folderName string) (*model.TenantWorkflow, error) {
	w, err := scanWorkflow(s.db.QueryRow(ctx,
		`UPDATE workflows
		 SET engine_workflow_id = $3, definition = $4, folder_name = $5, updated_at = now()
		 WHERE id = $1 AND engine_workflow_id = $2 AND NOT active AND NOT is_template
		 RETURNING `+workflowColumns,
		id, prevEngineID, engineID, definitionArg(definition), folderName,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.EStoreConflict, "replace workflow clone", "workflow changed concurrently", err)
		}
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.EStoreConflict, "replace workflow clone", "engine workflow already referenced", err)
		}
		return nil, fmt.Errorf("replace workflow clone %s: %w", id, err)
	}
	return w, nil
}

func (s *WorkflowStore) SetActive(ctx context.Context, id string, active bool) (*model.TenantWorkflow, error) {
	w, err := scanWorkflow(s.db.QueryRow(ctx,
		`UPDATE workflows SET active = $2, updated_at = now()
		 WHERE id = $1 AND NOT is_template
		 RETURNING `+workflowColumns,
		id, active,
	))
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("set workflow %s active=%t", id, active), "workflow not found")
	}
	return w, nil
}

// Delete removes a tenant workflow. Deleting a missing row is not an error.
func (s *WorkflowStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1 AND NOT is_template`, id)
	if err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return nil
}

// List returns tenant workflows matching filter, ordered by ID for cursor
// pagination.
func (s *WorkflowStore) List(ctx context.Context, filter model.WorkflowFilter, params request.ListParams) ([]model.TenantWorkflow, bool, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE NOT is_template`
	args := []any{}
	argIdx := 1

	if !filter.Scope.Unrestricted {
		query += fmt.Sprintf(` AND tenant_id = ANY($%d)`, argIdx)
		args = append(args, filter.Scope.TenantIDs)
		argIdx++
	}
	if filter.TenantID != "" {
		query += fmt.Sprintf(` AND tenant_id = $%d`, argIdx)
		args = append(args, filter.TenantID)
		argIdx++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(` AND active = $%d`, argIdx)
		args = append(args, *filter.Active)
		argIdx++
	}
	if params.Search != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []model.TenantWorkflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate workflows: %w", err)
	}

	hasMore := len(workflows) > params.Limit
	if hasMore {
		workflows = workflows[:params.Limit]
	}
	return workflows, hasMore, nil
}

func scanTemplate(row pgx.Row) (*model.WorkflowTemplate, error) {
	var t model.WorkflowTemplate
	if err := row.Scan(&t.ID, &t.EngineWorkflowID, &t.Name, &t.Definition, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanWorkflow(row pgx.Row) (*model.TenantWorkflow, error) {
	var w model.TenantWorkflow
	if err := row.Scan(&w.ID, &w.EngineWorkflowID, &w.TenantID, &w.ParentWorkflowID, &w.Name,
		&w.Active, &w.FolderName, &w.Definition, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// definitionArg passes the definition to pgx as raw bytes so the json column
// receives it unmodified.
func definitionArg(def json.RawMessage) []byte {
	if len(def) == 0 {
		return []byte("{}")
	}
	return []byte(def)
}
