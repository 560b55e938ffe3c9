package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/flowplane/internal/config"
	"github.com/edvin/flowplane/internal/core"
	"github.com/edvin/flowplane/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, db Pinger) (*Server, *core.Services) {
	t.Helper()
	services := core.NewServices(nil, nil, nil, nil, testSecret, "flowplane")
	cfg := &config.Config{CORSOrigins: []string{"http://localhost:5173"}}
	return NewServer(zerolog.Nop(), db, services, cfg), services
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Readyz(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv, _ = newTestServer(t, stubPinger{err: errors.New("connection refused")})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var checks map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checks))
	assert.Equal(t, "connection refused", checks["database"])
}

func TestServer_OpenAPIDocument(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/workflows/{id}/provision")
	assert.Contains(t, doc.Paths, "/catalog/sync")
}

func TestServer_APIRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t, stubPinger{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_CatalogSyncRequiresGlobalAdmin(t *testing.T) {
	srv, services := newTestServer(t, stubPinger{})

	token, err := services.Auth.IssueToken(model.Caller{UserID: "u-1", Role: model.RoleMSPAdmin, TenantID: "msp-1"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/sync", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
