package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

const tenantColumns = `id, name, address, motto, logo_url, primary_color, secondary_color,
	slug, subscription_tier, created_at, updated_at`

// CreateTenant runs on the pool owner's connection: a new tenant has no scope yet.
func (s *Store) CreateTenant(ctx context.Context, t *models.Tenant) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Name, t.Address, t.Motto, t.LogoURL, t.PrimaryColor, t.SecondaryColor,
		t.Slug, t.SubscriptionTier, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", translate(err))
	}
	return nil
}

func (s *Store) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := s.scoped(ctx, id, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
		if err != nil {
			return err
		}
		t, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Tenant])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", translate(err))
	}
	return &t, nil
}

// GetTenantBySlug resolves routing before any tenant scope exists, so it
// reads through the pool owner's connection. It only ever matches the
// unique slug.
func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	rows, err := s.db.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", err)
	}
	t, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Tenant])
	if err != nil {
		return nil, fmt.Errorf("get tenant by slug: %w", translate(err))
	}
	return &t, nil
}

func (s *Store) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	return s.scoped(ctx, t.ID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tenants SET name = $2, address = $3, motto = $4, logo_url = $5,
			        primary_color = $6, secondary_color = $7, subscription_tier = $8, updated_at = $9
			 WHERE id = $1`,
			t.ID, t.Name, t.Address, t.Motto, t.LogoURL, t.PrimaryColor, t.SecondaryColor,
			t.SubscriptionTier, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update tenant: %w", translate(err))
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

const profileColumns = `id, tenant_id, role, full_name, email, created_at`

func (s *Store) GetProfile(ctx context.Context, tenantID, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE tenant_id = $1 AND id = $2`, tenantID, userID)
		if err != nil {
			return err
		}
		p, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Profile])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", translate(err))
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context, tenantID uuid.UUID, roles ...models.Role) ([]models.Profile, error) {
	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = string(r)
	}

	var out []models.Profile
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+profileColumns+` FROM profiles
			 WHERE tenant_id = $1 AND (cardinality($2::text[]) = 0 OR role = ANY($2))
			 ORDER BY full_name`, tenantID, roleNames)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.Profile])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", translate(err))
	}
	return out, nil
}
