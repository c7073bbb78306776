// Package rest serves inventory through the hosted REST gateway as the
// signed-in user. The user's access token is forwarded on every call, so
// the gateway's row-level security decides what the caller may see.
package rest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/supabase"
)

const (
	categoryTable   = "inventory_categories"
	categoryColumns = "id,tenant_id,name,description,created_at"
)

// ErrNoAccessToken is returned when the request carries no user token.
// The store never falls back to the anon key.
var ErrNoAccessToken = errors.New("rest: no access token in context")

// TokenFunc extracts the caller's raw access token from a request context.
type TokenFunc func(ctx context.Context) string

type InventoryStore struct {
	cfg   config.SupabaseConfig
	token TokenFunc
}

func NewInventoryStore(cfg config.SupabaseConfig, token TokenFunc) *InventoryStore {
	return &InventoryStore{cfg: cfg, token: token}
}

func (s *InventoryStore) client(ctx context.Context) (*supabase.Client, error) {
	tok := s.token(ctx)
	if tok == "" {
		return nil, ErrNoAccessToken
	}
	return supabase.NewUserClient(s.cfg, tok)
}

func (s *InventoryStore) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryCategory, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.InventoryCategory
	if err := c.Select(ctx, categoryTable, categoryColumns, supabase.Eq("tenant_id", tenantID.String()), &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", translate(err))
	}
	slices.SortFunc(out, func(a, b models.InventoryCategory) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *InventoryStore) CreateCategory(ctx context.Context, cat *models.InventoryCategory) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}
	if err := c.Insert(ctx, categoryTable, cat, nil); err != nil {
		return fmt.Errorf("insert category: %w", translate(err))
	}
	return nil
}

// translate maps gateway errors onto the model sentinels, using the same
// SQLSTATE codes as the postgres store.
func translate(err error) error {
	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case "23505":
		return fmt.Errorf("%s: %w", apiErr.Message, models.ErrConflict)
	case "23503", "42501":
		return fmt.Errorf("%s: %w", apiErr.Message, models.ErrCrossTenant)
	}
	return err
}
