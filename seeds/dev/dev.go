package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/config"
	"github.com/edvin/flowplane/internal/core"
	"github.com/edvin/flowplane/internal/db"
	"github.com/edvin/flowplane/internal/model"
	"github.com/edvin/flowplane/internal/store"
)

const tokenTTL = 30 * 24 * time.Hour

type seedFile struct {
	Tenants []tenantEntry `yaml:"tenants"`
	Users   []userEntry   `yaml:"users"`
}

type tenantEntry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
	Type   string `yaml:"type"`
	Parent string `yaml:"parent"`
}

type userEntry struct {
	ID     string `yaml:"id"`
	Role   string `yaml:"role"`
	Tenant string `yaml:"tenant"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate("seed"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	seed, err := loadSeedFile(seedPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding flowplane database...")

	tenantStore := store.NewTenantStore(pool)
	tenants := core.NewTenantService(tenantStore, core.NewScopeResolver(tenantStore))
	for _, entry := range seed.Tenants {
		t := entry.tenant()
		err := tenants.Create(ctx, t)
		switch {
		case err == nil:
			fmt.Printf("  Created tenant %s (%s)\n", t.Name, t.TenantType)
		case apperr.Is(err, apperr.EConflict):
			fmt.Printf("  Tenant %s already exists\n", t.Name)
		default:
			fmt.Fprintf(os.Stderr, "create tenant %s: %v\n", entry.ID, err)
			os.Exit(1)
		}
	}

	fmt.Println()
	fmt.Println("Development tokens:")
	auth := core.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer)
	for _, u := range seed.Users {
		token, err := auth.IssueToken(model.Caller{UserID: u.ID, Role: u.Role, TenantID: u.Tenant}, tokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token for %s: %v\n", u.ID, err)
			os.Exit(1)
		}
		fmt.Printf("  %-22s %-13s %s\n", u.ID, u.Role, token)
	}

	fmt.Println("Done.")
}

// seedPath resolves tenants.yaml next to this file unless SEED_FILE is set.
func seedPath() string {
	if p := os.Getenv("SEED_FILE"); p != "" {
		return p
	}
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "tenants.yaml")
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(seed.Tenants))
	for _, t := range seed.Tenants {
		if t.Parent != "" && !seen[t.Parent] {
			return nil, fmt.Errorf("tenant %s: parent %s must be listed first", t.ID, t.Parent)
		}
		seen[t.ID] = true
	}
	for _, u := range seed.Users {
		if u.Role != model.RoleGlobalAdmin && !seen[u.Tenant] {
			return nil, fmt.Errorf("user %s: unknown tenant %q", u.ID, u.Tenant)
		}
	}

	return &seed, nil
}

func (e tenantEntry) tenant() *model.Tenant {
	t := &model.Tenant{
		ID:         e.ID,
		Name:       e.Name,
		Domain:     e.Domain,
		TenantType: e.Type,
	}
	if e.Parent != "" {
		parent := e.Parent
		t.ParentTenantID = &parent
	}
	return t
}
