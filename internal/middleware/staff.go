package middleware

import (
	"net/http"

	"github.com/spendlog/spendlog/internal/auth"
)

// RequireStaff rejects callers without the staff flag.
// Must be applied after Auth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p == nil {
			writeAuthError(w)
			return
		}
		if !p.IsStaff {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}
