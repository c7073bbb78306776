package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/result"
)

type Repository interface {
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]models.InventoryCategory, error)
	CreateCategory(ctx context.Context, c *models.InventoryCategory) error
}

// DefaultCategories are seeded for every new school.
var DefaultCategories = []string{"Books", "Furniture", "ICT Equipment", "Laboratory", "Sports"}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListCategories never fails hard: store errors come back as result.Fail.
func (s *Service) ListCategories(ctx context.Context, tenantID uuid.UUID) result.Result[[]models.InventoryCategory] {
	cats, err := s.repo.ListCategories(ctx, tenantID)
	if err != nil {
		slog.Error("list inventory categories", "tenant_id", tenantID, "error", err)
		return result.Fail[[]models.InventoryCategory](err)
	}
	if cats == nil {
		cats = []models.InventoryCategory{}
	}
	return result.Ok(cats)
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (s *Service) CreateCategory(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*models.InventoryCategory, error) {
	c := &models.InventoryCategory{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
