package store

import (
	"context"
	"fmt"

	"github.com/edvin/flowplane/internal/model"
)

type AuditStore struct {
	db DB
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Insert(ctx context.Context, e model.AuditEntry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO workflow_activation_audit (id, tenant_workflow_id, tenant_id, user_id, action, engine_workflow_id, folder_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.TenantWorkflowID, e.TenantID, e.UserID, e.Action, e.EngineWorkflowID, e.FolderName, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow audit entry: %w", err)
	}
	return nil
}

// ListByWorkflow returns the audit trail of one tenant workflow, oldest first.
func (s *AuditStore) ListByWorkflow(ctx context.Context, tenantWorkflowID string) ([]model.AuditEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_workflow_id, tenant_id, user_id, action, engine_workflow_id, folder_name, created_at
		 FROM workflow_activation_audit WHERE tenant_workflow_id = $1 ORDER BY created_at, id`, tenantWorkflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workflow audit %s: %w", tenantWorkflowID, err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.TenantWorkflowID, &e.TenantID, &e.UserID, &e.Action,
			&e.EngineWorkflowID, &e.FolderName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow audit: %w", err)
	}
	return entries, nil
}
