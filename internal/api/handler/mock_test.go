package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	mw "github.com/edvin/flowplane/internal/api/middleware"
	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/model"
)

type mockWorkflowService struct {
	mock.Mock
}

func (m *mockWorkflowService) Provision(ctx context.Context, caller *model.Caller, tenantID, templateRef string) (*model.TenantWorkflow, error) {
	args := m.Called(ctx, caller, tenantID, templateRef)
	return workflowResult(args)
}

func (m *mockWorkflowService) Start(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error) {
	return workflowResult(m.Called(ctx, caller, id))
}

func (m *mockWorkflowService) Stop(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error) {
	return workflowResult(m.Called(ctx, caller, id))
}

func (m *mockWorkflowService) Retire(ctx context.Context, caller *model.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *mockWorkflowService) Get(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error) {
	return workflowResult(m.Called(ctx, caller, id))
}

func (m *mockWorkflowService) List(ctx context.Context, caller *model.Caller, tenantID string, active *bool, params request.ListParams) ([]model.TenantWorkflow, bool, error) {
	args := m.Called(ctx, caller, tenantID, active, params)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]model.TenantWorkflow), args.Bool(1), args.Error(2)
}

func (m *mockWorkflowService) History(ctx context.Context, caller *model.Caller, id string) ([]model.AuditEntry, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

func workflowResult(args mock.Arguments) (*model.TenantWorkflow, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TenantWorkflow), args.Error(1)
}

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) SyncFromEngine(ctx context.Context) (model.SyncResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.SyncResult), args.Error(1)
}

func (m *mockCatalogService) ListTemplates(ctx context.Context) ([]model.WorkflowTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkflowTemplate), args.Error(1)
}

type mockTenantService struct {
	mock.Mock
}

func (m *mockTenantService) List(ctx context.Context, caller *model.Caller) ([]model.Tenant, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *mockTenantService) Get(ctx context.Context, caller *model.Caller, id string) (*model.Tenant, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withCaller(r *http.Request, caller *model.Caller) *http.Request {
	return r.WithContext(mw.WithCaller(r.Context(), caller))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

var acmeAdmin = &model.Caller{UserID: "user-acme", Role: model.RoleClientAdmin, TenantID: "42"}
