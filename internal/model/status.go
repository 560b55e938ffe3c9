package model

// Tenant status constants.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Tenant type constants.
const (
	TenantTypeStandalone = "standalone"
	TenantTypeMSP        = "msp"
	TenantTypeSubTenant  = "sub_tenant"
)
