package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/flowplane/internal/api/response"
	"github.com/edvin/flowplane/internal/model"
)

type contextKey string

const callerKey contextKey = "caller"

// TokenValidator turns a bearer token into a caller identity.
type TokenValidator interface {
	ValidateToken(raw string) (*model.Caller, error)
}

// Auth returns middleware that validates JWT Bearer tokens and injects the
// caller into the context.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			caller, err := validator.ValidateToken(token)
			if err != nil {
				response.WriteServiceError(w, r, err)
				return
			}

			ctx := WithCaller(r.Context(), caller)
			logger := zerolog.Ctx(ctx).With().
				Str("user_id", caller.UserID).
				Str("role", caller.Role).
				Str("caller_tenant_id", caller.TenantID).
				Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithCaller returns a context carrying caller.
func WithCaller(ctx context.Context, caller *model.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// GetCaller extracts the caller from the request context.
func GetCaller(ctx context.Context) *model.Caller {
	caller, _ := ctx.Value(callerKey).(*model.Caller)
	return caller
}
