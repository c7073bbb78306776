package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

const (
	ActionTenantOnboard   = "tenant.onboard"
	ActionSettingsUpdate  = "tenant.settings.update"
	ActionSubmissionGrade = "submission.grade"
)

type Sink interface {
	InsertAuditLog(ctx context.Context, l *models.AuditLog) error
}

type Service struct {
	sink Sink
}

func NewService(sink Sink) *Service {
	return &Service{sink: sink}
}

type LogEntry struct {
	TenantID     uuid.UUID // defaults to the tenant in ctx
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
}

func (s *Service) Log(ctx context.Context, entry LogEntry) error {
	tenantID := entry.TenantID
	if tenantID == uuid.Nil {
		tenantID = tenant.IDFromContext(ctx)
	}
	if tenantID == uuid.Nil {
		return fmt.Errorf("audit %s: no tenant", entry.Action)
	}

	var userID *uuid.UUID
	if p := tenant.ProfileFromContext(ctx); p != nil {
		userID = &p.ID
	}

	details, err := json.Marshal(entry.Details)
	if err != nil || entry.Details == nil {
		details = models.EmptyDetails
	}

	l := &models.AuditLog{
		ID:           uuid.New(),
		TenantID:     tenantID,
		UserID:       userID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.sink.InsertAuditLog(ctx, l); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Record logs and swallows failures. Audit trails never fail a request.
func (s *Service) Record(ctx context.Context, entry LogEntry) {
	if err := s.Log(ctx, entry); err != nil {
		slog.Warn("audit log failed", "action", entry.Action, "error", err)
	}
}
