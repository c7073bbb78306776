package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

type Repository interface {
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, tenantID, id uuid.UUID) (*models.Assignment, error)
	ListAssignments(ctx context.Context, tenantID uuid.UUID, classID *uuid.UUID) ([]models.Assignment, error)
	CreateSubmission(ctx context.Context, s *models.AssignmentSubmission) error
	GetSubmission(ctx context.Context, tenantID, id uuid.UUID) (*models.AssignmentSubmission, error)
	ListSubmissions(ctx context.Context, tenantID, assignmentID uuid.UUID) ([]models.AssignmentSubmission, error)
	GradeSubmission(ctx context.Context, s *models.AssignmentSubmission) error
	GetProfile(ctx context.Context, tenantID, userID uuid.UUID) (*models.Profile, error)
}

var (
	ErrNotStudent   = errors.New("only students can submit work")
	ErrInvalidGrade = errors.New("grade must be between 0 and the assignment's points")
	ErrEmptyContent = errors.New("submission content is empty")
	ErrMissingGrade = errors.New("grade is required")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateRequest struct {
	ClassID     uuid.UUID  `json:"class_id" validate:"required"`
	SubjectID   uuid.UUID  `json:"subject_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Points      *int       `json:"points" validate:"omitempty,min=0"`
}

func (s *Service) Create(ctx context.Context, tenantID, teacherID uuid.UUID, req CreateRequest) (*models.Assignment, error) {
	now := time.Now().UTC()
	a := &models.Assignment{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ClassID:     req.ClassID,
		SubjectID:   req.SubjectID,
		TeacherID:   teacherID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		Points:      req.Points,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Assignment, error) {
	a, err := s.repo.GetAssignment(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, classID *uuid.UUID) ([]models.Assignment, error) {
	as, err := s.repo.ListAssignments(ctx, tenantID, classID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if as == nil {
		as = []models.Assignment{}
	}
	return as, nil
}

// Submit records a student's work. The assignment and the student must
// both belong to tenantID; this is checked here and not left to store
// policies alone.
func (s *Service) Submit(ctx context.Context, tenantID, assignmentID, studentID uuid.UUID, content string) (*models.AssignmentSubmission, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	a, err := s.repo.GetAssignment(ctx, tenantID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if a.TenantID != tenantID {
		return nil, models.ErrCrossTenant
	}

	student, err := s.repo.GetProfile(ctx, tenantID, studentID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrCrossTenant
	}
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student.TenantID != a.TenantID {
		return nil, models.ErrCrossTenant
	}
	if student.Role != models.RoleStudent {
		return nil, ErrNotStudent
	}

	sub := &models.AssignmentSubmission{
		ID:           uuid.New(),
		TenantID:     tenantID,
		AssignmentID: a.ID,
		StudentID:    student.ID,
		Content:      content,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

func (s *Service) Submissions(ctx context.Context, tenantID, assignmentID uuid.UUID) ([]models.AssignmentSubmission, error) {
	if _, err := s.repo.GetAssignment(ctx, tenantID, assignmentID); err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	subs, err := s.repo.ListSubmissions(ctx, tenantID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if subs == nil {
		subs = []models.AssignmentSubmission{}
	}
	return subs, nil
}

type GradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required,min=0"`
	Feedback *string  `json:"feedback" validate:"omitempty,max=5000"`
}

func (s *Service) Grade(ctx context.Context, tenantID, submissionID uuid.UUID, req GradeRequest) (*models.AssignmentSubmission, error) {
	if req.Grade == nil {
		return nil, ErrMissingGrade
	}

	sub, err := s.repo.GetSubmission(ctx, tenantID, submissionID)
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	a, err := s.repo.GetAssignment(ctx, tenantID, sub.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}

	grade := *req.Grade
	if grade < 0 || (a.Points != nil && grade > float64(*a.Points)) {
		return nil, ErrInvalidGrade
	}

	now := time.Now().UTC()
	sub.Grade = &grade
	sub.Feedback = req.Feedback
	sub.GradedAt = &now

	if err := s.repo.GradeSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("grade submission: %w", err)
	}
	return sub, nil
}
