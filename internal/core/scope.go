package core

import (
	"context"

	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/model"
)

// ScopeResolver computes which tenants a caller may see and act on. Every
// endpoint goes through it; results are never cached.
type ScopeResolver struct {
	tenants TenantStore
}

func NewScopeResolver(tenants TenantStore) *ScopeResolver {
	return &ScopeResolver{tenants: tenants}
}

// Resolve returns the caller's scope. global_admin is unrestricted;
// msp_admin and client_admin see their tenant and everything below it;
// every other role sees exactly its own tenant. A caller without a tenant,
// or whose tenant does not exist, is denied rather than given an empty scope.
func (r *ScopeResolver) Resolve(ctx context.Context, caller *model.Caller) (model.ScopeFilter, error) {
	if caller == nil {
		return model.ScopeFilter{}, apperr.New(apperr.EAccessDenied, "resolve scope", "caller identity missing")
	}
	if caller.IsGlobalAdmin() {
		return model.ScopeFilter{Unrestricted: true}, nil
	}
	if caller.TenantID == "" {
		return model.ScopeFilter{}, apperr.New(apperr.EAccessDenied, "resolve scope", "caller is not bound to a tenant")
	}
	if !caller.SeesChildren() {
		return model.ScopeFilter{TenantIDs: []string{caller.TenantID}}, nil
	}

	ids, err := r.tenants.Descendants(ctx, caller.TenantID)
	if err != nil {
		return model.ScopeFilter{}, err
	}
	if len(ids) == 0 {
		return model.ScopeFilter{}, apperr.New(apperr.EAccessDenied, "resolve scope", "caller tenant does not exist")
	}
	return model.ScopeFilter{TenantIDs: ids}, nil
}
