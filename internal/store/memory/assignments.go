package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

func (s *Store) CreateAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[a.TenantID]; !ok {
		return fmt.Errorf("assignment tenant: %w", models.ErrNotFound)
	}
	s.assignments[a.ID] = *a
	return nil
}

func (s *Store) GetAssignment(_ context.Context, tenantID, id uuid.UUID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[id]
	if !ok || a.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (s *Store) ListAssignments(_ context.Context, tenantID uuid.UUID, classID *uuid.UUID) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Assignment{}
	for _, a := range s.assignments {
		if a.TenantID != tenantID {
			continue
		}
		if classID != nil && a.ClassID != *classID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CreateSubmission mirrors the composite foreign key on
// (assignment_id, tenant_id) in the Postgres schema.
func (s *Store) CreateSubmission(_ context.Context, sub *models.AssignmentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[sub.AssignmentID]
	if !ok {
		return fmt.Errorf("submission assignment: %w", models.ErrNotFound)
	}
	if a.TenantID != sub.TenantID {
		return models.ErrCrossTenant
	}
	if p, ok := s.profiles[sub.StudentID]; !ok || p.TenantID != sub.TenantID {
		return models.ErrCrossTenant
	}
	s.submissions[sub.ID] = *sub
	return nil
}

func (s *Store) GetSubmission(_ context.Context, tenantID, id uuid.UUID) (*models.AssignmentSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[id]
	if !ok || sub.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	return &sub, nil
}

func (s *Store) ListSubmissions(_ context.Context, tenantID, assignmentID uuid.UUID) ([]models.AssignmentSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AssignmentSubmission{}
	for _, sub := range s.submissions {
		if sub.TenantID == tenantID && sub.AssignmentID == assignmentID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *Store) GradeSubmission(_ context.Context, sub *models.AssignmentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.submissions[sub.ID]
	if !ok || existing.TenantID != sub.TenantID {
		return models.ErrNotFound
	}
	existing.Grade = sub.Grade
	existing.Feedback = sub.Feedback
	existing.GradedAt = sub.GradedAt
	s.submissions[sub.ID] = existing
	return nil
}
