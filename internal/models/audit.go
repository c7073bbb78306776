package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one row of audit_logs. UserID is nil for operator actions
// such as onboarding, where no school member is signed in. Details is
// always a JSON object, "{}" when the action carries no extra data.
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TenantID     uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	UserID       *uuid.UUID      `json:"user_id" db:"user_id"`
	Action       string          `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *uuid.UUID      `json:"resource_id" db:"resource_id"`
	Details      json.RawMessage `json:"details" db:"details"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// EmptyDetails is stored when an entry has no details.
var EmptyDetails = json.RawMessage(`{}`)
