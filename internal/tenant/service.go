package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

type Repository interface {
	CreateTenant(ctx context.Context, t *models.Tenant) error
	GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, t *models.Tenant) error
	GetProfile(ctx context.Context, tenantID, userID uuid.UUID) (*models.Profile, error)
	ListProfiles(ctx context.Context, tenantID uuid.UUID, roles ...models.Role) ([]models.Profile, error)
}

// Cache memoizes slug lookups. Implementations must tolerate misses.
type Cache interface {
	GetTenant(ctx context.Context, slug string) (*models.Tenant, error)
	SetTenant(ctx context.Context, t *models.Tenant) error
	InvalidateTenant(ctx context.Context, slug string) error
}

// Provisioner schedules post-onboarding setup for a new tenant.
type Provisioner interface {
	EnqueueProvision(tenantID uuid.UUID) error
}

type Service struct {
	repo        Repository
	cache       Cache
	provisioner Provisioner
}

func NewService(repo Repository, cache Cache, provisioner Provisioner) *Service {
	return &Service{repo: repo, cache: cache, provisioner: provisioner}
}

// Resolve maps a routing slug to its tenant. Unknown slugs yield models.ErrNotFound.
func (s *Service) Resolve(ctx context.Context, slug string) (*models.Tenant, error) {
	if s.cache != nil {
		if t, err := s.cache.GetTenant(ctx, slug); err == nil && t != nil {
			return t, nil
		}
	}

	t, err := s.repo.GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant %q: %w", slug, err)
	}

	if s.cache != nil {
		if err := s.cache.SetTenant(ctx, t); err != nil {
			slog.Warn("tenant cache write failed", "slug", slug, "error", err)
		}
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.repo.GetTenantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

type OnboardRequest struct {
	Name             string                  `json:"name" validate:"required,max=200"`
	Slug             string                  `json:"slug" validate:"required"`
	Address          *string                 `json:"address"`
	Motto            *string                 `json:"motto"`
	SubscriptionTier models.SubscriptionTier `json:"subscription_tier"`
}

var ErrInvalidSlug = errors.New("slug must be 1-63 lowercase letters, digits or hyphens")

// Onboard creates a school. The slug must be unique across all tenants.
func (s *Service) Onboard(ctx context.Context, req OnboardRequest) (*models.Tenant, error) {
	slug, ok := validSlug(strings.ToLower(strings.TrimSpace(req.Slug)))
	if !ok {
		return nil, ErrInvalidSlug
	}
	tier := req.SubscriptionTier
	if tier == "" {
		tier = models.TierFree
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("unknown subscription tier %q", tier)
	}

	now := time.Now().UTC()
	t := &models.Tenant{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		Address:          req.Address,
		Motto:            req.Motto,
		Slug:             slug,
		SubscriptionTier: tier,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateTenant(ctx, t); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	if s.provisioner != nil {
		if err := s.provisioner.EnqueueProvision(t.ID); err != nil {
			slog.Error("enqueue tenant provisioning failed", "tenant_id", t.ID, "error", err)
		}
	}
	return t, nil
}

// SettingsUpdate holds admin-editable fields. Nil pointers are left unchanged.
type SettingsUpdate struct {
	Name             *string                  `json:"name" validate:"omitempty,min=1,max=200"`
	Address          *string                  `json:"address"`
	Motto            *string                  `json:"motto"`
	LogoURL          *string                  `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor     *string                  `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor   *string                  `json:"secondary_color" validate:"omitempty,hexcolor"`
	SubscriptionTier *models.SubscriptionTier `json:"subscription_tier"`
}

func (s *Service) UpdateSettings(ctx context.Context, tenantID uuid.UUID, u SettingsUpdate) (*models.Tenant, error) {
	t, err := s.repo.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant: %w", err)
	}

	if u.Name != nil {
		t.Name = strings.TrimSpace(*u.Name)
	}
	if u.Address != nil {
		t.Address = u.Address
	}
	if u.Motto != nil {
		t.Motto = u.Motto
	}
	if u.LogoURL != nil {
		t.LogoURL = u.LogoURL
	}
	if u.PrimaryColor != nil {
		t.PrimaryColor = u.PrimaryColor
	}
	if u.SecondaryColor != nil {
		t.SecondaryColor = u.SecondaryColor
	}
	if u.SubscriptionTier != nil {
		if !u.SubscriptionTier.Valid() {
			return nil, fmt.Errorf("unknown subscription tier %q", *u.SubscriptionTier)
		}
		t.SubscriptionTier = *u.SubscriptionTier
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTenant(ctx, t); err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTenant(ctx, t.Slug); err != nil {
			slog.Warn("tenant cache invalidation failed", "slug", t.Slug, "error", err)
		}
	}
	return t, nil
}

func (s *Service) Profile(ctx context.Context, tenantID, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.repo.GetProfile(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

var staffRoles = []models.Role{models.RoleAdmin, models.RoleTeacher, models.RoleStaff}

func (s *Service) ListStaff(ctx context.Context, tenantID uuid.UUID) ([]models.Profile, error) {
	staff, err := s.repo.ListProfiles(ctx, tenantID, staffRoles...)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	if staff == nil {
		staff = []models.Profile{}
	}
	return staff, nil
}
