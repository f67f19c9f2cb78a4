package middleware

import (
	"net/http"
)

// RequireCreator lets through only the creator admin.
func RequireCreator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsCreator {
			writeJSONError(w, http.StatusForbidden, "only the creator admin may do this")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActive rejects customers whose account is not activated yet.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsActive {
			writeJSONError(w, http.StatusForbidden, "account is not activated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
