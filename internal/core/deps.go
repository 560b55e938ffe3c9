package core

import (
	"context"
	"encoding/json"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/engine"
	"github.com/edvin/flowplane/internal/model"
)

// TenantStore is the tenant hierarchy store.
type TenantStore interface {
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	Create(ctx context.Context, t *model.Tenant) error
	Descendants(ctx context.Context, rootID string) ([]string, error)
	List(ctx context.Context, scope model.ScopeFilter) ([]model.Tenant, error)
}

// WorkflowStore holds catalog templates and tenant workflows.
type WorkflowStore interface {
	GetTemplate(ctx context.Context, ref string) (*model.WorkflowTemplate, error)
	ListTemplates(ctx context.Context) ([]model.WorkflowTemplate, error)
	UpsertTemplate(ctx context.Context, t *model.WorkflowTemplate) (bool, error)

	GetByID(ctx context.Context, id string) (*model.TenantWorkflow, error)
	GetByTenantAndName(ctx context.Context, tenantID, name string) (*model.TenantWorkflow, error)
	Insert(ctx context.Context, w *model.TenantWorkflow) error
	ReplaceClone(ctx context.Context, id, prevEngineID, engineID string, definition json.RawMessage, folderName string) (*model.TenantWorkflow, error)
	SetActive(ctx context.Context, id string, active bool) (*model.TenantWorkflow, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter model.WorkflowFilter, params request.ListParams) ([]model.TenantWorkflow, bool, error)
}

// Engine is the external workflow engine gateway.
type Engine interface {
	GetOrCreateFolder(ctx context.Context, label string) (string, error)
	CloneWorkflow(ctx context.Context, sourceID, newName, folderID string) (*engine.ClonedWorkflow, error)
	SetActive(ctx context.Context, engineID string, active bool) error
	DeleteWorkflow(ctx context.Context, engineID string) error
	ListWorkflows(ctx context.Context) ([]engine.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*engine.Workflow, error)
}

// AuditRecorder accepts activation audit entries. Record must not block.
type AuditRecorder interface {
	Record(entry model.AuditEntry)
}

// AuditReader reads back the audit trail of a tenant workflow.
type AuditReader interface {
	ListByWorkflow(ctx context.Context, tenantWorkflowID string) ([]model.AuditEntry, error)
}

// Archiver keeps a copy of a workflow definition before it is retired.
type Archiver interface {
	Archive(ctx context.Context, w *model.TenantWorkflow) error
}

type noopRecorder struct{}

func (noopRecorder) Record(model.AuditEntry) {}

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, *model.TenantWorkflow) error { return nil }
