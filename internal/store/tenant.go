package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/model"
)

const tenantColumns = `id, name, domain, status, tenant_type, parent_tenant_id, created_at, updated_at`

// scopeQuery returns the root tenant and every tenant below it. UNION (not
// UNION ALL) makes the recursion terminate even if a cycle slipped in.
const scopeQuery = `WITH RECURSIVE scope AS (
	SELECT id FROM tenants WHERE id = $1
	UNION
	SELECT t.id FROM tenants t JOIN scope s ON t.parent_tenant_id = s.id
)
SELECT id FROM scope`

type TenantStore struct {
	db DB
}

func NewTenantStore(db DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	))
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("get tenant %s", id), "tenant not found")
	}
	return t, nil
}

func (s *TenantStore) Create(ctx context.Context, t *model.Tenant) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.Domain, t.Status, t.TenantType, t.ParentTenantID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.EConflict, "insert tenant", fmt.Sprintf("tenant %s or domain %s already exists", t.ID, t.Domain), err)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// Descendants returns rootID and the IDs of all tenants below it. The result
// is empty when rootID does not exist.
func (s *TenantStore) Descendants(ctx context.Context, rootID string) ([]string, error) {
	rows, err := s.db.Query(ctx, scopeQuery, rootID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant scope %s: %w", rootID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant scope: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant scope: %w", err)
	}
	return ids, nil
}

// List returns the tenants inside scope ordered by name.
func (s *TenantStore) List(ctx context.Context, scope model.ScopeFilter) ([]model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants`
	var args []any
	if !scope.Unrestricted {
		query += ` WHERE id = ANY($1)`
		args = append(args, scope.TenantIDs)
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return tenants, nil
}

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.Domain, &t.Status, &t.TenantType, &t.ParentTenantID,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
