package handler

import (
	"context"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/model"
)

// WorkflowService is the tenant workflow lifecycle behind the workflow routes.
type WorkflowService interface {
	Provision(ctx context.Context, caller *model.Caller, tenantID, templateRef string) (*model.TenantWorkflow, error)
	Start(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error)
	Stop(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error)
	Retire(ctx context.Context, caller *model.Caller, id string) error
	Get(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error)
	List(ctx context.Context, caller *model.Caller, tenantID string, active *bool, params request.ListParams) ([]model.TenantWorkflow, bool, error)
	History(ctx context.Context, caller *model.Caller, id string) ([]model.AuditEntry, error)
}

// CatalogService is the template catalog behind the catalog routes.
type CatalogService interface {
	SyncFromEngine(ctx context.Context) (model.SyncResult, error)
	ListTemplates(ctx context.Context) ([]model.WorkflowTemplate, error)
}

// TenantService is the read side of the tenant hierarchy.
type TenantService interface {
	List(ctx context.Context, caller *model.Caller) ([]model.Tenant, error)
	Get(ctx context.Context, caller *model.Caller, id string) (*model.Tenant, error)
}
