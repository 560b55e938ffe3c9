package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/flowplane/internal/apperr"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	WriteJSON(w, http.StatusOK, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "world", body["hello"])
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "something went wrong", body.Error)
	assert.Equal(t, apperr.EInvalid, body.Kind)
}

func TestWritePaginated(t *testing.T) {
	w := httptest.NewRecorder()

	WritePaginated(w, http.StatusOK, []string{"a", "b"}, "b", true)

	var body struct {
		Items      []string `json:"items"`
		NextCursor string   `json:"next_cursor"`
		HasMore    bool     `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Items)
	assert.Equal(t, "b", body.NextCursor)
	assert.True(t, body.HasMore)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"not found", apperr.New(apperr.ENotFound, "get", "workflow not found"), http.StatusNotFound, apperr.ENotFound, "workflow not found"},
		{"forbidden", apperr.New(apperr.EForbidden, "auth", "workflow belongs to another tenant"), http.StatusForbidden, apperr.EForbidden, "workflow belongs to another tenant"},
		{"access denied", apperr.New(apperr.EAccessDenied, "scope", "caller is not bound to a tenant"), http.StatusForbidden, apperr.EAccessDenied, "caller is not bound to a tenant"},
		{"conflict", apperr.New(apperr.EConflict, "provision", "workflow already activated"), http.StatusConflict, apperr.EConflict, "workflow already activated"},
		{"invalid", apperr.New(apperr.EInvalid, "create", "name and domain are required"), http.StatusBadRequest, apperr.EInvalid, "name and domain are required"},
		{"unauthorized", apperr.New(apperr.EUnauthorized, "token", "token expired"), http.StatusUnauthorized, apperr.EUnauthorized, "token expired"},
		{"wrapped", fmt.Errorf("clone: %w", apperr.New(apperr.ENotFound, "clone", "template not found in workflow engine")), http.StatusNotFound, apperr.ENotFound, "template not found in workflow engine"},
		{"inconsistent", apperr.Wrap(apperr.EEngineInconsistent, "clone", "unexpected payload: nodes missing", errors.New("raw body")), http.StatusBadGateway, apperr.EEngineInconsistent, "the workflow engine returned an unexpected response"},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, apperr.EInternal, "an internal error has occurred"},
		{"store conflict", apperr.New(apperr.EStoreConflict, "insert", "duplicate"), http.StatusInternalServerError, apperr.EInternal, "an internal error has occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			WriteServiceError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantMsg, body.Error)
			assert.False(t, body.Retryable)
			assert.Empty(t, w.Header().Get("Retry-After"))
		})
	}
}

func TestWriteServiceError_EngineUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteServiceError(w, r, apperr.New(apperr.EEngineUnavailable, "activate", "workflow engine unavailable"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Retryable)
	assert.Equal(t, apperr.EEngineUnavailable, body.Kind)
	assert.Equal(t, "workflow engine unavailable", body.Error)
}
