package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/edvin/flowplane/internal/apperr"
)

// RetryAfterSeconds is advertised on engine_unavailable responses.
const RetryAfterSeconds = 5

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Kind: kindForStatus(status)})
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

// WriteServiceError maps a service error to its HTTP status. Internal and
// engine_inconsistent causes are logged and replaced by a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.ErrorCode(err)
	status := StatusForCode(code)
	logger := zerolog.Ctx(r.Context())

	switch code {
	case apperr.EInternal, apperr.EStoreConflict:
		logger.Error().Err(err).Msg("internal error")
		WriteJSON(w, status, ErrorResponse{Error: "an internal error has occurred", Kind: apperr.EInternal})
	case apperr.EEngineInconsistent:
		logger.Error().Err(err).Msg("workflow engine returned an unexpected response")
		WriteJSON(w, status, ErrorResponse{Error: "the workflow engine returned an unexpected response", Kind: code})
	case apperr.EEngineUnavailable:
		logger.Warn().Err(err).Msg("workflow engine unavailable")
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
		WriteJSON(w, status, ErrorResponse{Error: apperr.ErrorMessage(err), Kind: code, Retryable: true})
	default:
		WriteJSON(w, status, ErrorResponse{Error: apperr.ErrorMessage(err), Kind: code})
	}
}

// StatusForCode returns the HTTP status for an error code.
func StatusForCode(code string) int {
	switch code {
	case apperr.ENotFound:
		return http.StatusNotFound
	case apperr.EForbidden, apperr.EAccessDenied:
		return http.StatusForbidden
	case apperr.EConflict:
		return http.StatusConflict
	case apperr.EInvalid:
		return http.StatusBadRequest
	case apperr.EUnauthorized:
		return http.StatusUnauthorized
	case apperr.EEngineUnavailable:
		return http.StatusServiceUnavailable
	case apperr.EEngineInconsistent:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.EInvalid
	case http.StatusUnauthorized:
		return apperr.EUnauthorized
	case http.StatusForbidden:
		return apperr.EForbidden
	case http.StatusNotFound:
		return apperr.ENotFound
	case http.StatusConflict:
		return apperr.EConflict
	default:
		return ""
	}
}
