package model

import "time"

// Workflow audit actions.
const (
	AuditActionProvision  = "provision"
	AuditActionReactivate = "reactivate"
	AuditActionStart      = "start"
	AuditActionStop       = "stop"
	AuditActionRetire     = "retire"
)

// AuditEntry records who changed which tenant workflow, and when.
type AuditEntry struct {
	ID               string    `json:"id" db:"id"`
	TenantWorkflowID string    `json:"tenant_workflow_id" db:"tenant_workflow_id"`
	TenantID         string    `json:"tenant_id" db:"tenant_id"`
	UserID           string    `json:"user_id" db:"user_id"`
	Action           string    `json:"action" db:"action"`
	EngineWorkflowID string    `json:"engine_workflow_id" db:"engine_workflow_id"`
	FolderName       string    `json:"folder_name" db:"folder_name"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
