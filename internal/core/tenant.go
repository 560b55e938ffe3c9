package core

import (
	"context"
	"time"

	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/model"
	"github.com/edvin/flowplane/internal/platform"
)

type TenantService struct {
	store  TenantStore
	scopes *ScopeResolver
}

func NewTenantService(store TenantStore, scopes *ScopeResolver) *TenantService {
	return &TenantService{store: store, scopes: scopes}
}

// Create inserts a tenant, enforcing the hierarchy: a parent must be an msp,
// and a tenant with a parent is always a sub_tenant.
func (s *TenantService) Create(ctx context.Context, t *model.Tenant) error {
	if t.Name == "" || t.Domain == "" {
		return apperr.New(apperr.EInvalid, "create tenant", "name and domain are required")
	}

	if t.ParentTenantID != nil {
		parent, err := s.store.GetByID(ctx, *t.ParentTenantID)
		if err != nil {
			if apperr.Is(err, apperr.ENotFound) {
				return apperr.Wrap(apperr.EInvalid, "create tenant", "parent tenant does not exist", err)
			}
			return err
		}
		if !parent.CanParent() {
			return apperr.New(apperr.EInvalid, "create tenant", "parent tenant must be an msp")
		}
		t.TenantType = model.TenantTypeSubTenant
	} else if t.TenantType == model.TenantTypeSubTenant {
		return apperr.New(apperr.EInvalid, "create tenant", "a sub_tenant requires a parent tenant")
	}

	if t.ID == "" {
		t.ID = platform.NewID()
	}
	if t.TenantType == "" {
		t.TenantType = model.TenantTypeStandalone
	}
	if t.Status == "" {
		t.Status = model.StatusActive
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	return s.store.Create(ctx, t)
}

// List returns the tenants the caller may see.
func (s *TenantService) List(ctx context.Context, caller *model.Caller) ([]model.Tenant, error) {
	scope, err := s.scopes.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, scope)
}

// Get returns one tenant inside the caller's scope.
func (s *TenantService) Get(ctx context.Context, caller *model.Caller, id string) (*model.Tenant, error) {
	scope, err := s.scopes.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(id) {
		return nil, apperr.New(apperr.EForbidden, "get tenant", "tenant is outside your scope")
	}
	return s.store.GetByID(ctx, id)
}
