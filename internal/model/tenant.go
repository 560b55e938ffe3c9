package model

import "time"

type Tenant struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Domain         string    `json:"domain" db:"domain"`
	Status         string    `json:"status" db:"status"`
	TenantType     string    `json:"tenant_type" db:"tenant_type"`
	ParentTenantID *string   `json:"parent_tenant_id,omitempty" db:"parent_tenant_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CanParent reports whether other tenants may hang below this one.
func (t *Tenant) CanParent() bool {
	return t.TenantType == TenantTypeMSP
}
