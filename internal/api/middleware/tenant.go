package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

type TenantResolver interface {
	Resolve(ctx context.Context, slug string) (*models.Tenant, error)
}

// Tenant binds the request to the school named by the {domain} URL
// parameter, falling back to the Host header's subdomain. Unknown schools
// get a 404.
func Tenant(resolver TenantResolver, rootDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug, ok := tenant.ResolveSlug(chi.URLParam(r, "domain"), r.Host, rootDomain)
			if !ok {
				notFound(w)
				return
			}

			t, err := resolver.Resolve(r.Context(), slug)
			if errors.Is(err, models.ErrNotFound) {
				notFound(w)
				return
			}
			if err != nil {
				slog.Error("tenant resolution failed", "slug", slug, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "tenant resolution failed"})
				return
			}

			annotateTenant(r.Context(), t.Slug)
			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), t)))
		})
	}
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "school not found"})
}
