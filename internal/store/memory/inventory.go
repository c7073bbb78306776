package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

func (s *Store) ListCategories(_ context.Context, tenantID uuid.UUID) ([]models.InventoryCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.InventoryCategory{}
	for _, c := range s.categories {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.InventoryCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[c.TenantID]; !ok {
		return fmt.Errorf("category tenant: %w", models.ErrNotFound)
	}
	for _, existing := range s.categories {
		if existing.TenantID == c.TenantID && existing.Name == c.Name {
			return fmt.Errorf("category %q: %w", c.Name, models.ErrConflict)
		}
	}
	s.categories[c.ID] = *c
	return nil
}
