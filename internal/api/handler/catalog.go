package handler

import (
	"net/http"

	"github.com/edvin/flowplane/internal/api/response"
)

type Catalog struct {
	svc CatalogService
}

func NewCatalog(svc CatalogService) *Catalog {
	return &Catalog{svc: svc}
}

// Sync mirrors the engine's library workflows into the template catalog.
//
//	@Summary		Sync the template catalog
//	@ID			syncCatalog
//	@Description	Upserts every engine workflow tagged "library" whose name has no tenant prefix. Requires global_admin.
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	model.SyncResult
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		502	{object}	response.ErrorResponse
//	@Failure		503	{object}	response.ErrorResponse
//	@Security		BearerAuth
//	@Router			/catalog/sync [post]
func (h *Catalog) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SyncFromEngine(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, result)
}

// ListTemplates returns the catalog without definitions.
//
//	@Summary		List catalog templates
//	@ID			listTemplates
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{object}	itemsResponse[model.WorkflowTemplate]
//	@Security		BearerAuth
//	@Router			/catalog/templates [get]
func (h *Catalog) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListTemplates(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, items(templates))
}
