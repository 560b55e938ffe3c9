package model

import (
	"encoding/json"
	"time"
)

// NameSeparator joins tenant and template names. Catalog sync skips any
// engine workflow whose name contains it, so tenant copies are never
// mistaken for templates.
const NameSeparator = " - "

// WorkflowTemplate is a catalog entry mirrored from the engine.
type WorkflowTemplate struct {
	ID               string          `json:"id" db:"id"`
	EngineWorkflowID string          `json:"engine_workflow_id" db:"engine_workflow_id"`
	Name             string          `json:"name" db:"name"`
	Definition       json.RawMessage `json:"definition,omitempty" db:"definition"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// TenantWorkflow is a tenant's clone of a template living in the engine.
type TenantWorkflow struct {
	ID               string          `json:"id" db:"id"`
	EngineWorkflowID string          `json:"engine_workflow_id" db:"engine_workflow_id"`
	TenantID         string          `json:"tenant_id" db:"tenant_id"`
	ParentWorkflowID *string         `json:"parent_workflow_id,omitempty" db:"parent_workflow_id"`
	Name             string          `json:"name" db:"name"`
	Active           bool            `json:"active" db:"active"`
	FolderName       string          `json:"folder_name" db:"folder_name"`
	Definition       json.RawMessage `json:"definition,omitempty" db:"definition"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// WorkflowName derives the deterministic name of a tenant's copy of a template.
func WorkflowName(tenantName, templateName string) string {
	return tenantName + NameSeparator + templateName
}

// WorkflowFilter narrows a tenant workflow listing.
type WorkflowFilter struct {
	Scope    ScopeFilter
	TenantID string
	Active   *bool
}

// SyncResult reports the outcome of a catalog sync.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
