package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

func (s *Store) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryCategory, error) {
	var out []models.InventoryCategory
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id, tenant_id, name, description, created_at
			 FROM inventory_categories WHERE tenant_id = $1 ORDER BY name`, tenantID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.InventoryCategory])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", translate(err))
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.InventoryCategory) error {
	return s.scoped(ctx, c.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO inventory_categories (id, tenant_id, name, description, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.TenantID, c.Name, c.Description, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert category: %w", translate(err))
		}
		return nil
	})
}
