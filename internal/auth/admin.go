package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards platform-operator routes such as tenant
// onboarding. An empty configured token disables those routes.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(token))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			got := sha256.Sum256([]byte(r.Header.Get(AdminTokenHeader)))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
