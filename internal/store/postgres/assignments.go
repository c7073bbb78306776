package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

const (
	assignmentColumns = `id, tenant_id, class_id, subject_id, teacher_id, title, description,
		due_date, points, created_at, updated_at`
	submissionColumns = `id, tenant_id, assignment_id, student_id, content, grade, feedback,
		submitted_at, graded_at`
)

func (s *Store) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	return s.scoped(ctx, a.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO assignments (`+assignmentColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			a.ID, a.TenantID, a.ClassID, a.SubjectID, a.TeacherID, a.Title, a.Description,
			a.DueDate, a.Points, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert assignment: %w", translate(err))
		}
		return nil
	})
}

func (s *Store) GetAssignment(ctx context.Context, tenantID, id uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+assignmentColumns+` FROM assignments WHERE tenant_id = $1 AND id = $2`, tenantID, id)
		if err != nil {
			return err
		}
		a, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Assignment])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", translate(err))
	}
	return &a, nil
}

func (s *Store) ListAssignments(ctx context.Context, tenantID uuid.UUID, classID *uuid.UUID) ([]models.Assignment, error) {
	var out []models.Assignment
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+assignmentColumns+` FROM assignments
			 WHERE tenant_id = $1 AND ($2::uuid IS NULL OR class_id = $2)
			 ORDER BY created_at DESC`, tenantID, classID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.Assignment])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", translate(err))
	}
	return out, nil
}

// CreateSubmission relies on the composite foreign keys to reject rows whose
// assignment or student sit in another tenant.
func (s *Store) CreateSubmission(ctx context.Context, sub *models.AssignmentSubmission) error {
	return s.scoped(ctx, sub.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO assignment_submissions (`+submissionColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			sub.ID, sub.TenantID, sub.AssignmentID, sub.StudentID, sub.Content, sub.Grade,
			sub.Feedback, sub.SubmittedAt, sub.GradedAt,
		)
		if err != nil {
			return fmt.Errorf("insert submission: %w", translate(err))
		}
		return nil
	})
}

func (s *Store) GetSubmission(ctx context.Context, tenantID, id uuid.UUID) (*models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+submissionColumns+` FROM assignment_submissions WHERE tenant_id = $1 AND id = $2`,
			tenantID, id)
		if err != nil {
			return err
		}
		sub, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[models.AssignmentSubmission])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", translate(err))
	}
	return &sub, nil
}

func (s *Store) ListSubmissions(ctx context.Context, tenantID, assignmentID uuid.UUID) ([]models.AssignmentSubmission, error) {
	var out []models.AssignmentSubmission
	err := s.scoped(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+submissionColumns+` FROM assignment_submissions
			 WHERE tenant_id = $1 AND assignment_id = $2 ORDER BY submitted_at`, tenantID, assignmentID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[models.AssignmentSubmission])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", translate(err))
	}
	return out, nil
}

func (s *Store) GradeSubmission(ctx context.Context, sub *models.AssignmentSubmission) error {
	return s.scoped(ctx, sub.TenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE assignment_submissions SET grade = $3, feedback = $4, graded_at = $5
			 WHERE tenant_id = $1 AND id = $2`,
			sub.TenantID, sub.ID, sub.Grade, sub.Feedback, sub.GradedAt,
		)
		if err != nil {
			return fmt.Errorf("grade submission: %w", translate(err))
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}
