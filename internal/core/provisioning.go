package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/engine"
	"github.com/edvin/flowplane/internal/metrics"
	"github.com/edvin/flowplane/internal/model"
	"github.com/edvin/flowplane/internal/platform"
)

const (
	defaultProvisionAttempts = 5
	defaultRetryDelay        = 50 * time.Millisecond
)

type ProvisioningConfig struct {
	Tenants   TenantStore
	Workflows WorkflowStore
	Engine    Engine
	Scopes    *ScopeResolver
	Audit     AuditRecorder
	History   AuditReader
	Archiver  Archiver

	// Attempts bounds how often a provision raced by a concurrent caller is retried.
	Attempts   uint64
	RetryDelay time.Duration
}

// ProvisioningService runs the tenant workflow lifecycle: provision (or
// reactivate), start, stop and retire. The engine is called first; the local
// row only changes once the engine call succeeded.
type ProvisioningService struct {
	tenants    TenantStore
	workflows  WorkflowStore
	engine     Engine
	scopes     *ScopeResolver
	audit      AuditRecorder
	history    AuditReader
	archiver   Archiver
	attempts   uint64
	retryDelay time.Duration
}

func NewProvisioningService(cfg ProvisioningConfig) *ProvisioningService {
	s := &ProvisioningService{
		tenants:    cfg.Tenants,
		workflows:  cfg.Workflows,
		engine:     cfg.Engine,
		scopes:     cfg.Scopes,
		audit:      cfg.Audit,
		history:    cfg.History,
		archiver:   cfg.Archiver,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}
	if s.audit == nil {
		s.audit = noopRecorder{}
	}
	if s.archiver == nil {
		s.archiver = noopArchiver{}
	}
	if s.attempts == 0 {
		s.attempts = defaultProvisionAttempts
	}
	if s.retryDelay <= 0 {
		s.retryDelay = defaultRetryDelay
	}
	return s
}

// Provision gives tenantID its own engine copy of the template. With no
// existing row a clone is created and recorded; an inactive row is
// reactivated in place with a fresh clone; an active row is a conflict and
// the engine is not touched.
func (s *ProvisioningService) Provision(ctx context.Context, caller *model.Caller, tenantID, templateRef string) (tw *model.TenantWorkflow, err error) {
	defer observe("provision", &err)

	tenant, err := s.authorizeTenant(ctx, caller, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == model.StatusSuspended {
		return nil, apperr.New(apperr.EForbidden, "provision", "tenant is suspended")
	}

	template, err := s.workflows.GetTemplate(ctx, templateRef)
	if err != nil {
		return nil, err
	}

	name := model.WorkflowName(tenant.Name, template.Name)
	logger := zerolog.Ctx(ctx).With().
		Str("tenant_id", tenant.ID).
		Str("template_id", template.ID).
		Str("workflow_name", name).
		Logger()
	ctx = logger.WithContext(ctx)

	backoff := retry.WithMaxRetries(s.attempts-1, retry.NewConstant(s.retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		result, err := s.provisionOnce(ctx, caller, tenant, template, name)
		if apperr.Is(err, apperr.EStoreConflict) {
			metrics.StoreConflictRetries.Inc()
			logger.Debug().Err(err).Msg("provisioning raced with another caller, retrying")
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		tw = result
		return nil
	})
	if apperr.Is(err, apperr.EStoreConflict) {
		return nil, apperr.Wrap(apperr.EConflict, "provision", "workflow is being provisioned concurrently, retry later", err)
	}
	if err != nil {
		return nil, err
	}
	return tw, nil
}

func (s *ProvisioningService) provisionOnce(ctx context.Context, caller *model.Caller, tenant *model.Tenant, template *model.WorkflowTemplate, name string) (*model.TenantWorkflow, error) {
	existing, err := s.workflows.GetByTenantAndName(ctx, tenant.ID, name)
	switch {
	case err == nil && existing.Active:
		return nil, apperr.New(apperr.EConflict, "provision", "workflow already activated")
	case err == nil:
		return s.reactivate(ctx, caller, existing, tenant, template)
	case !apperr.Is(err, apperr.ENotFound):
		return nil, err
	}

	clone, err := s.cloneForTenant(ctx, tenant, template, name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tw := &model.TenantWorkflow{
		ID:               platform.NewID(),
		EngineWorkflowID: clone.EngineID,
		TenantID:         tenant.ID,
		ParentWorkflowID: &template.ID,
		Name:             name,
		Active:           false,
		FolderName:       tenant.Name,
		Definition:       clone.Definition,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.workflows.Insert(ctx, tw); err != nil {
		s.discardClone(ctx, clone.EngineID)
		return nil, err
	}

	s.record(caller, tw, model.AuditActionProvision)
	zerolog.Ctx(ctx).Info().Str("workflow_id", tw.ID).Str("engine_workflow_id", tw.EngineWorkflowID).
		Msg("workflow provisioned")
	return tw, nil
}

// reactivate replaces the engine copy behind an inactive row. The row update
// is guarded by the engine ID read earlier, so two reactivations cannot both
// win; the loser discards its clone and retries.
func (s *ProvisioningService) reactivate(ctx context.Context, caller *model.Caller, existing *model.TenantWorkflow, tenant *model.Tenant, template *model.WorkflowTemplate) (*model.TenantWorkflow, error) {
	clone, err := s.cloneForTenant(ctx, tenant, template, existing.Name)
	if err != nil {
		return nil, err
	}

	updated, err := s.workflows.ReplaceClone(ctx, existing.ID, existing.EngineWorkflowID, clone.EngineID, clone.Definition, tenant.Name)
	if err != nil {
		s.discardClone(ctx, clone.EngineID)
		return nil, err
	}

	if existing.EngineWorkflowID != "" && existing.EngineWorkflowID != clone.EngineID {
		if err := s.engine.DeleteWorkflow(ctx, existing.EngineWorkflowID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("engine_workflow_id", existing.EngineWorkflowID).
				Msg("failed to delete previous engine copy during reactivation")
		}
	}

	s.record(caller, updated, model.AuditActionReactivate)
	zerolog.Ctx(ctx).Info().Str("workflow_id", updated.ID).Str("engine_workflow_id", updated.EngineWorkflowID).
		Msg("workflow reactivated")
	return updated, nil
}

func (s *ProvisioningService) cloneForTenant(ctx context.Context, tenant *model.Tenant, template *model.WorkflowTemplate, name string) (*engine.ClonedWorkflow, error) {
	folderID, err := s.engine.GetOrCreateFolder(ctx, tenant.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve folder for tenant %s: %w", tenant.ID, err)
	}
	clone, err := s.engine.CloneWorkflow(ctx, template.EngineWorkflowID, name, folderID)
	if err != nil {
		return nil, fmt.Errorf("clone template %s: %w", template.EngineWorkflowID, err)
	}
	return clone, nil
}

func (s *ProvisioningService) discardClone(ctx context.Context, engineID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.engine.DeleteWorkflow(ctx, engineID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("engine_workflow_id", engineID).Msg("failed to discard unused clone")
	}
}

// Start activates the workflow in the engine, then records it as active.
func (s *ProvisioningService) Start(ctx context.Context, caller *model.Caller, id string) (tw *model.TenantWorkflow, err error) {
	defer observe("start", &err)

	tw, err = s.authorizeMutation(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, tw.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == model.StatusSuspended {
		return nil, apperr.New(apperr.EForbidden, "start", "tenant is suspended")
	}

	if err := s.engine.SetActive(ctx, tw.EngineWorkflowID, true); err != nil {
		if apperr.Is(err, apperr.ENotFound) {
			s.markGone(ctx, tw)
			return nil, apperr.Wrap(apperr.ENotFound, "start", "workflow no longer exists in the engine, provision it again", err)
		}
		return nil, err
	}

	updated, err := s.workflows.SetActive(ctx, tw.ID, true)
	if err != nil {
		return nil, fmt.Errorf("record workflow %s as active: %w", tw.ID, err)
	}
	s.record(caller, updated, model.AuditActionStart)
	return updated, nil
}

// Stop deactivates the workflow in the engine, then records it as inactive.
// A copy that is already gone from the engine counts as stopped.
func (s *ProvisioningService) Stop(ctx context.Context, caller *model.Caller, id string) (tw *model.TenantWorkflow, err error) {
	defer observe("stop", &err)

	tw, err = s.authorizeMutation(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := s.engine.SetActive(ctx, tw.EngineWorkflowID, false); err != nil {
		if !apperr.Is(err, apperr.ENotFound) {
			return nil, err
		}
		zerolog.Ctx(ctx).Warn().Str("workflow_id", tw.ID).Str("engine_workflow_id", tw.EngineWorkflowID).
			Msg("engine copy missing on stop, marking inactive")
	}

	updated, err := s.workflows.SetActive(ctx, tw.ID, false)
	if err != nil {
		return nil, fmt.Errorf("record workflow %s as inactive: %w", tw.ID, err)
	}
	s.record(caller, updated, model.AuditActionStop)
	return updated, nil
}

// Retire deletes the engine copy and the local row. Engine failures are
// logged and do not keep the local row alive.
func (s *ProvisioningService) Retire(ctx context.Context, caller *model.Caller, id string) (err error) {
	defer observe("retire", &err)

	tw, err := s.authorizeMutation(ctx, caller, id)
	if err != nil {
		return err
	}
	logger := zerolog.Ctx(ctx).With().Str("workflow_id", tw.ID).Str("engine_workflow_id", tw.EngineWorkflowID).Logger()

	if err := s.engine.DeleteWorkflow(ctx, tw.EngineWorkflowID); err != nil {
		logger.Warn().Err(err).Msg("engine delete failed during retire, removing local record anyway")
	}
	if err := s.archiver.Archive(ctx, tw); err != nil {
		logger.Warn().Err(err).Msg("failed to archive retired workflow definition")
	}

	// The engine copy may already be gone; a client disconnect must not
	// leave the local row behind.
	if err := s.workflows.Delete(context.WithoutCancel(ctx), tw.ID); err != nil {
		return err
	}
	s.record(caller, tw, model.AuditActionRetire)
	logger.Info().Msg("workflow retired")
	return nil
}

// Get returns one tenant workflow inside the caller's scope.
func (s *ProvisioningService) Get(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error) {
	return s.authorizeWorkflow(ctx, caller, id)
}

// List returns the tenant workflows inside the caller's scope, optionally
// narrowed to one tenant and to active or inactive rows.
func (s *ProvisioningService) List(ctx context.Context, caller *model.Caller, tenantID string, active *bool, params request.ListParams) ([]model.TenantWorkflow, bool, error) {
	scope, err := s.scopes.Resolve(ctx, caller)
	if err != nil {
		return nil, false, err
	}
	if tenantID != "" && !scope.Allows(tenantID) {
		return nil, false, apperr.New(apperr.EForbidden, "list workflows", "tenant is outside your scope")
	}

	workflows, hasMore, err := s.workflows.List(ctx, model.WorkflowFilter{Scope: scope, TenantID: tenantID, Active: active}, params)
	if err != nil {
		return nil, false, err
	}
	for i := range workflows {
		workflows[i].Definition = nil
	}
	return workflows, hasMore, nil
}

// History returns the activation audit trail of a tenant workflow.
func (s *ProvisioningService) History(ctx context.Context, caller *model.Caller, id string) ([]model.AuditEntry, error) {
	tw, err := s.authorizeWorkflow(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []model.AuditEntry{}, nil
	}
	return s.history.ListByWorkflow(ctx, tw.ID)
}

func (s *ProvisioningService) authorizeTenant(ctx context.Context, caller *model.Caller, tenantID string) (*model.Tenant, error) {
	scope, err := s.scopes.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(tenantID) {
		return nil, apperr.New(apperr.EForbidden, "authorize tenant", "tenant is outside your scope")
	}
	return s.tenants.GetByID(ctx, tenantID)
}

func (s *ProvisioningService) authorizeWorkflow(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error) {
	scope, err := s.scopes.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	tw, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(tw.TenantID) {
		return nil, apperr.New(apperr.EForbidden, "authorize workflow", "workflow belongs to another tenant")
	}
	return tw, nil
}

// authorizeMutation loads a workflow the caller may start, stop or retire.
// Only a global_admin or a member of the owning tenant qualifies; an MSP
// scope grants read access to sub-tenant workflows, not control.
func (s *ProvisioningService) authorizeMutation(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error) {
	tw, err := s.workflows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsGlobalAdmin() && tw.TenantID != caller.TenantID {
		return nil, apperr.New(apperr.EForbidden, "authorize workflow", "workflow belongs to another tenant")
	}
	return tw, nil
}

// markGone records that the engine no longer has the workflow's copy.
func (s *ProvisioningService) markGone(ctx context.Context, tw *model.TenantWorkflow) {
	zerolog.Ctx(ctx).Warn().Str("workflow_id", tw.ID).Str("engine_workflow_id", tw.EngineWorkflowID).
		Msg("engine copy missing")
	if !tw.Active {
		return
	}
	if _, err := s.workflows.SetActive(ctx, tw.ID, false); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("workflow_id", tw.ID).Msg("failed to mark workflow inactive")
	}
}

func (s *ProvisioningService) record(caller *model.Caller, tw *model.TenantWorkflow, action string) {
	s.audit.Record(model.AuditEntry{
		ID:               platform.NewID(),
		TenantWorkflowID: tw.ID,
		TenantID:         tw.TenantID,
		UserID:           caller.UserID,
		Action:           action,
		EngineWorkflowID: tw.EngineWorkflowID,
		FolderName:       tw.FolderName,
		CreatedAt:        time.Now(),
	})
}

func observe(operation string, err *error) {
	metrics.WorkflowOperations.WithLabelValues(operation, metrics.Outcome(*err)).Inc()
}
