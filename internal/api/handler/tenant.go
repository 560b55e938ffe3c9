package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/flowplane/internal/api/request"
	"github.com/edvin/flowplane/internal/api/response"
)

type Tenant struct {
	svc TenantService
}

func NewTenant(svc TenantService) *Tenant {
	return &Tenant{svc: svc}
}

// List returns the tenants inside the caller's scope.
//
//	@Summary	List tenants
//	@ID		listTenants
//	@Tags		Tenants
//	@Produce	json
//	@Success	200	{object}	itemsResponse[model.Tenant]
//	@Failure	403	{object}	response.ErrorResponse
//	@Security	BearerAuth
//	@Router		/tenants [get]
func (h *Tenant) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	tenants, err := h.svc.List(r.Context(), caller)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, items(tenants))
}

// Get returns one tenant inside the caller's scope.
//
//	@Summary	Get a tenant
//	@ID		getTenant
//	@Tags		Tenants
//	@Produce	json
//	@Param		id	path		string	true	"Tenant ID"
//	@Success	200	{object}	model.Tenant
//	@Failure	403	{object}	response.ErrorResponse
//	@Failure	404	{object}	response.ErrorResponse
//	@Security	BearerAuth
//	@Router		/tenants/{id} [get]
func (h *Tenant) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.svc.Get(r.Context(), caller, id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tenant)
}
