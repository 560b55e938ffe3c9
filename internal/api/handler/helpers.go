package handler

import (
	"net/http"

	mw "github.com/edvin/flowplane/internal/api/middleware"
	"github.com/edvin/flowplane/internal/api/response"
	"github.com/edvin/flowplane/internal/model"
)

// requireCaller returns the authenticated caller or writes a 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (*model.Caller, bool) {
	caller := mw.GetCaller(r.Context())
	if caller == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return nil, false
	}
	return caller, true
}

// itemsResponse wraps an unpaginated list.
type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

func items[T any](list []T) itemsResponse[T] {
	if list == nil {
		list = []T{}
	}
	return itemsResponse[T]{Items: list}
}
