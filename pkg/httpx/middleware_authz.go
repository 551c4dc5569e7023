package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyPermission rejects callers whose token carries none of the listed
// permissions. With enforce false every request passes.
func RequireAnyPermission(enforce bool, required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		if !enforce {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			if claims.HasPermission(required...) {
				next.ServeHTTP(w, r)
				return
			}

			writeInsufficientPermission(w, required...)
		})
	}
}

func writeInsufficientPermission(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteFailure(w, http.StatusForbidden, "forbidden")
}
