package core

import (
	"github.com/edvin/flowplane/internal/store"
)

type Services struct {
	Auth         *AuthService
	Scopes       *ScopeResolver
	Tenant       *TenantService
	Catalog      *CatalogService
	Provisioning *ProvisioningService
}

// NewServices wires the services over one database and one engine gateway.
func NewServices(db store.DB, eng Engine, audit AuditRecorder, archiver Archiver, jwtSecret, jwtIssuer string) *Services {
	tenants := store.NewTenantStore(db)
	workflows := store.NewWorkflowStore(db)
	scopes := NewScopeResolver(tenants)

	return &Services{
		Auth:    NewAuthService(jwtSecret, jwtIssuer),
		Scopes:  scopes,
		Tenant:  NewTenantService(tenants, scopes),
		Catalog: NewCatalogService(eng, workflows),
		Provisioning: NewProvisioningService(ProvisioningConfig{
			Tenants:   tenants,
			Workflows: workflows,
			Engine:    eng,
			Scopes:    scopes,
			Audit:     audit,
			History:   store.NewAuditStore(db),
			Archiver:  archiver,
		}),
	}
}
