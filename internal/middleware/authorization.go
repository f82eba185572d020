package middleware

import (
	"net/http"

	"github.com/mateo-stay/api-tienda-hot-wheels/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin gates an endpoint behind the admin role. It runs after
// AuthMiddleware, so the caller is already authenticated; a valid token
// with the wrong role gets 403, not 401. The check is plain equality —
// there are only two roles and no hierarchy.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if role != domain.RoleAdmin {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("role", role),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
