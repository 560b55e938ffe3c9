package middleware

import (
	"net/http"
	"slices"

	"github.com/edvin/flowplane/internal/api/response"
)

// RequireRole returns middleware that only admits callers with one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := GetCaller(r.Context())
			if caller == nil {
				response.WriteError(w, http.StatusUnauthorized, "missing caller identity")
				return
			}
			if !slices.Contains(roles, caller.Role) {
				response.WriteError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
