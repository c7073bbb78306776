package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

type contextKey string

const (
	tenantKey  contextKey = "tenant"
	profileKey contextKey = "profile"
)

func WithTenant(ctx context.Context, t *models.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

func FromContext(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(tenantKey).(*models.Tenant)
	return t
}

func IDFromContext(ctx context.Context) uuid.UUID {
	if t := FromContext(ctx); t != nil {
		return t.ID
	}
	return uuid.Nil
}

func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func ProfileFromContext(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(profileKey).(*models.Profile)
	return p
}
