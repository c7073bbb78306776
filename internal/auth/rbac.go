package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

type ProfileLookup interface {
	Profile(ctx context.Context, tenantID, userID uuid.UUID) (*models.Profile, error)
}

// RequireMember admits only users holding a profile in the request's
// tenant. It must run after the tenant and JWT middleware.
func RequireMember(profiles ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			t := tenant.FromContext(ctx)
			claims := ClaimsFromContext(ctx)
			if t == nil || claims == nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid user ID in token")
				return
			}

			p, err := profiles.Profile(ctx, t.ID, userID)
			if errors.Is(err, models.ErrNotFound) {
				writeError(w, http.StatusForbidden, "not a member of this school")
				return
			}
			if err != nil {
				slog.Error("membership lookup failed", "tenant_id", t.ID, "error", err)
				writeError(w, http.StatusInternalServerError, "membership check failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithProfile(ctx, p)))
		})
	}
}

func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := tenant.ProfileFromContext(r.Context())
			if p == nil {
				writeError(w, http.StatusForbidden, "no profile in context")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
