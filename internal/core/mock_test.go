package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/apperr"
	"github.com/edvin/flowplane/internal/engine"
	"github.com/edvin/flowplane/internal/model"
)

// ---------- Tenant store ----------

type memTenantStore struct {
	mu              sync.Mutex
	tenants         map[string]*model.Tenant
	descendantCalls int
}

func newMemTenantStore(tenants ...model.Tenant) *memTenantStore {
	s := &memTenantStore{tenants: map[string]*model.Tenant{}}
	for i := range tenants {
		t := tenants[i]
		s.tenants[t.ID] = &t
	}
	return s
}

func (s *memTenantStore) GetByID(_ context.Context, id string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, apperr.New(apperr.ENotFound, "get tenant", "tenant not found")
	}
	cp := *t
	return &cp, nil
}

func (s *memTenantStore) Create(_ context.Context, t *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; ok {
		return apperr.New(apperr.EConflict, "insert tenant", "tenant already exists")
	}
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *memTenantStore) Descendants(_ context.Context, rootID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descendantCalls++
	if _, ok := s.tenants[rootID]; !ok {
		return nil, nil
	}
	ids := []string{rootID}
	for i := 0; i < len(ids); i++ {
		for _, t := range s.tenants {
			if t.ParentTenantID != nil && *t.ParentTenantID == ids[i] {
				ids = append(ids, t.ID)
			}
		}
	}
	return ids, nil
}

func (s *memTenantStore) List(_ context.Context, scope model.ScopeFilter) ([]model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Tenant
	for _, t := range s.tenants {
		if scope.Allows(t.ID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---------- Workflow store ----------

// memWorkflowStore mirrors the constraints of the workflows table: unique
// engine IDs, unique (tenant_id, name) and the guarded clone replacement.
type memWorkflowStore struct {
	mu        sync.Mutex
	templates map[string]*model.WorkflowTemplate
	workflows map[string]*model.TenantWorkflow

	insertErr    error
	setActiveErr error
}

func newMemWorkflowStore(templates ...model.WorkflowTemplate) *memWorkflowStore {
	s := &memWorkflowStore{templates: map[string]*model.WorkflowTemplate{}, workflows: map[string]*model.TenantWorkflow{}}
	for i := range templates {
		t := templates[i]
		s.templates[t.EngineWorkflowID] = &t
	}
	return s
}

func (s *memWorkflowStore) GetTemplate(_ context.Context, ref string) (*model.WorkflowTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.ID == ref || t.EngineWorkflowID == ref {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.ENotFound, "get template", "template not found")
}

func (s *memWorkflowStore) ListTemplates(_ context.Context) ([]model.WorkflowTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.WorkflowTemplate
	for _, t := range s.templates {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memWorkflowStore) UpsertTemplate(_ context.Context, t *model.WorkflowTemplate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.templates[t.EngineWorkflowID]; ok {
		existing.Name = t.Name
		existing.Definition = t.Definition
		t.ID = existing.ID
		return false, nil
	}
	cp := *t
	s.templates[t.EngineWorkflowID] = &cp
	return true, nil
}

func (s *memWorkflowStore) GetByID(_ context.Context, id string) (*model.TenantWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[id]
	if !ok {
		return nil, apperr.New(apperr.ENotFound, "get workflow", "workflow not found")
	}
	cp := *w
	return &cp, nil
}

func (s *memWorkflowStore) GetByTenantAndName(_ context.Context, tenantID, name string) (*model.TenantWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workflows {
		if w.TenantID == tenantID && w.Name == name {
			cp := *w
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.ENotFound, "get workflow", "workflow not found")
}

func (s *memWorkflowStore) Insert(_ context.Context, w *model.TenantWorkflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, existing := range s.workflows {
		if existing.TenantID == w.TenantID && existing.Name == w.Name {
			return apperr.New(apperr.EStoreConflict, "insert workflow", "duplicate (tenant_id, name)")
		}
		if existing.EngineWorkflowID == w.EngineWorkflowID {
			return apperr.New(apperr.EStoreConflict, "insert workflow", "duplicate engine id")
		}
	}
	cp := *w
	s.workflows[w.ID] = &cp
	return nil
}

func (s *memWorkflowStore) ReplaceClone(_ context.Context, id, prevEngineID, engineID string, definition json.RawMessage, folderName string) (*model.TenantWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[id]
	if !ok || w.Active || w.EngineWorkflowID != prevEngineID {
		return nil, apperr.New(apperr.EStoreConflict, "replace workflow clone", "workflow changed concurrently")
	}
	w.EngineWorkflowID = engineID
	w.Definition = definition
	w.FolderName = folderName
	cp := *w
	return &cp, nil
}

func (s *memWorkflowStore) SetActive(_ context.Context, id string, active bool) (*model.TenantWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setActiveErr != nil {
		return nil, s.setActiveErr
	}
	w, ok := s.workflows[id]
	if !ok {
		return nil, apperr.New(apperr.ENotFound, "set active", "workflow not found")
	}
	w.Active = active
	cp := *w
	return &cp, nil
}

func (s *memWorkflowStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, id)
	return nil
}

func (s *memWorkflowStore) List(_ context.Context, filter model.WorkflowFilter, params request.ListParams) ([]model.TenantWorkflow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TenantWorkflow
	for _, w := range s.workflows {
		if !filter.Scope.Allows(w.TenantID) {
			continue
		}
		if filter.TenantID != "" && w.TenantID != filter.TenantID {
			continue
		}
		if filter.Active != nil && w.Active != *filter.Active {
			continue
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	hasMore := params.Limit > 0 && len(out) > params.Limit
	if hasMore {
		out = out[:params.Limit]
	}
	return out, hasMore, nil
}

func (s *memWorkflowStore) all() []model.TenantWorkflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TenantWorkflow
	for _, w := range s.workflows {
		out = append(out, *w)
	}
	return out
}

func (s *memWorkflowStore) put(w model.TenantWorkflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[w.ID] = &w
}

// ---------- Engine ----------

// fakeEngine keeps track of which clones exist so tests can assert that no
// engine copy is orphaned.
type fakeEngine struct {
	mu      sync.Mutex
	folders map[string]string
	live    map[string]bool
	active  map[string]bool
	nextID  int
	calls   int

	library   []engine.Workflow
	cloneErr  error
	toggleErr error
	deleteErr error
	onDelete  func()
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{folders: map[string]string{}, live: map[string]bool{}, active: map[string]bool{}}
}

func (f *fakeEngine) GetOrCreateFolder(_ context.Context, label string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if id, ok := f.folders[label]; ok {
		return id, nil
	}
	id := "folder-" + label
	f.folders[label] = id
	return id, nil
}

func (f *fakeEngine) CloneWorkflow(_ context.Context, sourceID, newName, folderID string) (*engine.ClonedWorkflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.cloneErr != nil {
		return nil, f.cloneErr
	}
	f.nextID++
	id := fmt.Sprintf("eng-%d", f.nextID)
	f.live[id] = true
	def := fmt.Sprintf(`{"id":%q,"name":%q,"source":%q,"folder":%q}`, id, newName, sourceID, folderID)
	return &engine.ClonedWorkflow{EngineID: id, Definition: json.RawMessage(def)}, nil
}

func (f *fakeEngine) SetActive(_ context.Context, engineID string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.toggleErr != nil {
		return f.toggleErr
	}
	if !f.live[engineID] {
		return apperr.New(apperr.ENotFound, "activate", "not found in workflow engine")
	}
	f.active[engineID] = active
	return nil
}

func (f *fakeEngine) DeleteWorkflow(_ context.Context, engineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.onDelete != nil {
		f.onDelete()
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.live, engineID)
	delete(f.active, engineID)
	return nil
}

func (f *fakeEngine) ListWorkflows(_ context.Context) ([]engine.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.library, nil
}

func (f *fakeEngine) GetWorkflow(_ context.Context, id string) (*engine.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for i := range f.library {
		if f.library[i].ID == id {
			w := f.library[i]
			w.Raw = json.RawMessage(fmt.Sprintf(`{"id":%q,"name":%q,"nodes":[]}`, w.ID, w.Name))
			return &w, nil
		}
	}
	return nil, apperr.New(apperr.ENotFound, "get workflow", "not found in workflow engine")
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEngine) liveClones() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.live {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *fakeEngine) isActive(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[id]
}

// mockEngine is a testify mock for call-level assertions.
type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) GetOrCreateFolder(ctx context.Context, label string) (string, error) {
	args := m.Called(ctx, label)
	return args.String(0), args.Error(1)
}

func (m *mockEngine) CloneWorkflow(ctx context.Context, sourceID, newName, folderID string) (*engine.ClonedWorkflow, error) {
	args := m.Called(ctx, sourceID, newName, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.ClonedWorkflow), args.Error(1)
}

func (m *mockEngine) SetActive(ctx context.Context, engineID string, active bool) error {
	return m.Called(ctx, engineID, active).Error(0)
}

func (m *mockEngine) DeleteWorkflow(ctx context.Context, engineID string) error {
	return m.Called(ctx, engineID).Error(0)
}

func (m *mockEngine) ListWorkflows(ctx context.Context) ([]engine.Workflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]engine.Workflow), args.Error(1)
}

func (m *mockEngine) GetWorkflow(ctx context.Context, id string) (*engine.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Workflow), args.Error(1)
}

// ---------- Audit ----------

type recordingAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (r *recordingAudit) Record(e model.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *recordingAudit) ListByWorkflow(_ context.Context, id string) ([]model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range r.entries {
		if e.TenantWorkflowID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingArchiver struct {
	archived []string
	err      error
}

func (a *recordingArchiver) Archive(_ context.Context, w *model.TenantWorkflow) error {
	a.archived = append(a.archived, w.ID)
	return a.err
}
