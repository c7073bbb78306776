// Package memory is an in-process store used when no DATABASE_URL is
// configured and in tests. Every tenant-scoped read filters on tenant_id
// exactly like the row-level policies of the Postgres schema.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

type Store struct {
	mu          sync.RWMutex
	tenants     map[uuid.UUID]models.Tenant
	profiles    map[uuid.UUID]models.Profile
	categories  map[uuid.UUID]models.InventoryCategory
	assignments map[uuid.UUID]models.Assignment
	submissions map[uuid.UUID]models.AssignmentSubmission
	auditLogs   []models.AuditLog
}

func New() *Store {
	return &Store{
		tenants:     make(map[uuid.UUID]models.Tenant),
		profiles:    make(map[uuid.UUID]models.Profile),
		categories:  make(map[uuid.UUID]models.InventoryCategory),
		assignments: make(map[uuid.UUID]models.Assignment),
		submissions: make(map[uuid.UUID]models.AssignmentSubmission),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateTenant(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tenants {
		if existing.Slug == t.Slug {
			return fmt.Errorf("tenant slug %q: %w", t.Slug, models.ErrConflict)
		}
	}
	s.tenants[t.ID] = *t
	return nil
}

func (s *Store) GetTenantByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *Store) GetTenantBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) UpdateTenant(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tenants[t.ID]
	if !ok {
		return models.ErrNotFound
	}
	// slug and creation time are immutable through settings
	t.Slug = existing.Slug
	t.CreatedAt = existing.CreatedAt
	s.tenants[t.ID] = *t
	return nil
}

// PutProfile inserts or replaces a membership record.
func (s *Store) PutProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[p.TenantID]; !ok {
		return fmt.Errorf("profile tenant: %w", models.ErrNotFound)
	}
	s.profiles[p.ID] = *p
	return nil
}

func (s *Store) GetProfile(_ context.Context, tenantID, userID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok || p.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProfiles(_ context.Context, tenantID uuid.UUID, roles ...models.Role) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Profile{}
	for _, p := range s.profiles {
		if p.TenantID != tenantID || !hasRole(roles, p.Role) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func hasRole(roles []models.Role, r models.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, want := range roles {
		if want == r {
			return true
		}
	}
	return false
}

func (s *Store) InsertAuditLog(_ context.Context, l *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditLogs = append(s.auditLogs, *l)
	return nil
}

// AuditLogs returns the entries recorded for a tenant, oldest first.
func (s *Store) AuditLogs(tenantID uuid.UUID) []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditLog
	for _, l := range s.auditLogs {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out
}
