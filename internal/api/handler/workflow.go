package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/api/response"
	"github.com/edvin/flowplane/internal/model"
)

type Workflow struct {
	svc WorkflowService
}

func NewWorkflow(svc WorkflowService) *Workflow {
	return &Workflow{svc: svc}
}

// Provision gives a tenant its own engine copy of a catalog template.
//
//	@Summary		Provision a workflow
//	@ID			provisionWorkflow
//	@Description	Clones the template into the tenant's engine folder and records it inactive. An inactive existing copy is reactivated with a fresh clone; an active one is a conflict. tenant_id defaults to the caller's tenant.
//	@Tags			Workflows
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Template ID or engine workflow ID"
//	@Param			body	body		request.ProvisionWorkflow	false	"Target tenant"
//	@Success		201		{object}	model.TenantWorkflow
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse
//	@Failure		503		{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows/{id}/provision [post]
func (h *Workflow) Provision(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	templateRef, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ProvisionWorkflow
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = caller.TenantID
	}
	if tenantID == "" {
		response.WriteError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	tw, err := h.svc.Provision(r.Context(), caller, tenantID, templateRef)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, tw)
}

// Start activates a tenant workflow in the engine.
//
//	@Summary		Start a workflow
//	@ID			startWorkflow
//	@Tags			Workflows
//	@Produce		json
//	@Param			id	path		string	true	"Tenant workflow ID"
//	@Success		200	{object}	model.TenantWorkflow
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		502	{object}	response.ErrorResponse
//	@Failure		503	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows/{id}/start [post]
func (h *Workflow) Start(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.Start)
}

// Stop deactivates a tenant workflow in the engine.
//
//	@Summary		Stop a workflow
//	@ID			stopWorkflow
//	@Tags			Workflows
//	@Produce		json
//	@Param			id	path		string	true	"Tenant workflow ID"
//	@Success		200	{object}	model.TenantWorkflow
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		502	{object}	response.ErrorResponse
//	@Failure		503	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows/{id}/stop [post]
func (h *Workflow) Stop(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.Stop)
}

func (h *Workflow) toggle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller *model.Caller, id string) (*model.TenantWorkflow, error)) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tw, err := op(r.Context(), caller, id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tw)
}

// Retire deletes the engine copy and the local record.
//
//	@Summary		Retire a workflow
//	@ID			retireWorkflow
//	@Tags			Workflows
//	@Param			id	path	string	true	"Tenant workflow ID"
//	@Success		204
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows/{id}/retire [post]
func (h *Workflow) Retire(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Retire(r.Context(), caller, id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get returns one tenant workflow, definition included.
//
//	@Summary		Get a workflow
//	@ID			getWorkflow
//	@Tags			Workflows
//	@Produce		json
//	@Param			id	path		string	true	"Tenant workflow ID"
//	@Success		200	{object}	model.TenantWorkflow
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows/{id} [get]
func (h *Workflow) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tw, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tw)
}

// List returns the tenant workflows visible to the caller.
//
//	@Summary		List workflows
//	@ID			listWorkflows
//	@Tags			Workflows
//	@Produce		json
//	@Param			tenant_id	query		string	false	"Only this tenant"
//	@Param			active		query		bool	false	"Only active or inactive workflows"
//	@Param			search		query		string	false	"Name contains"
//	@Param			limit		query		int		false	"Page size (max 200)"
//	@Param			cursor		query		string	false	"Cursor from the previous page"
//	@Success		200			{object}	response.PaginatedResponse{items=[]model.TenantWorkflow}
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		403			{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows [get]
func (h *Workflow) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	active, err := request.ParseBool(r, "active")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	params := request.ParseListParams(r)

	workflows, hasMore, err := h.svc.List(r.Context(), caller, r.URL.Query().Get("tenant_id"), active, params)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if workflows == nil {
		workflows = []model.TenantWorkflow{}
	}

	var nextCursor string
	if hasMore && len(workflows) > 0 {
		nextCursor = workflows[len(workflows)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, workflows, nextCursor, hasMore)
}

// History returns the activation audit trail of a tenant workflow.
//
//	@Summary		Workflow activation history
//	@ID			workflowHistory
//	@Tags			Workflows
//	@Produce		json
//	@Param			id	path		string	true	"Tenant workflow ID"
//	@Success		200	{object}	itemsResponse[model.AuditEntry]
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/workflows/{id}/audit [get]
func (h *Workflow) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.svc.History(r.Context(), caller, id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, items(entries))
}
