package request

// ProvisionWorkflow is the body of a provision call. TenantID defaults to the
// caller's own tenant.
type ProvisionWorkflow struct {
	TenantID string `json:"tenant_id,omitempty" validate:"omitempty,identifier"`
}
