package model

import "slices"

// Caller roles.
const (
	RoleGlobalAdmin = "global_admin"
	RoleMSPAdmin    = "msp_admin"
	RoleClientAdmin = "client_admin"
	RoleUser        = "user"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

// IsGlobalAdmin reports whether the caller has unrestricted access.
func (c *Caller) IsGlobalAdmin() bool {
	return c != nil && c.Role == RoleGlobalAdmin
}

// SeesChildren reports whether the caller's scope extends to child tenants.
func (c *Caller) SeesChildren() bool {
	return c.Role == RoleMSPAdmin || c.Role == RoleClientAdmin
}

// ScopeFilter is the set of tenants a caller may read or act on.
type ScopeFilter struct {
	Unrestricted bool     `json:"unrestricted"`
	TenantIDs    []string `json:"tenant_ids,omitempty"`
}

// Allows reports whether tenantID is inside the scope.
func (s ScopeFilter) Allows(tenantID string) bool {
	if s.Unrestricted {
		return true
	}
	return tenantID != "" && slices.Contains(s.TenantIDs, tenantID)
}
