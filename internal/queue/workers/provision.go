package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/inventory"
	"github.com/nikhilbhutani/schoolhub/internal/queue"
	"github.com/nikhilbhutani/schoolhub/internal/supabase"
)

// ProvisionWorker seeds a new tenant's defaults. Writes go through the
// elevated client because no end user exists for the tenant yet.
type ProvisionWorker struct {
	cfg config.SupabaseConfig
}

func NewProvisionWorker(cfg config.SupabaseConfig) *ProvisionWorker {
	return &ProvisionWorker{cfg: cfg}
}

type categoryRow struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

func (w *ProvisionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p queue.TenantProvisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	tenantID, err := uuid.Parse(p.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", p.TenantID, asynq.SkipRetry)
	}

	// built per task; the elevated client never outlives one invocation
	admin, err := supabase.NewAdminClient(w.cfg)
	if err != nil {
		if errors.Is(err, supabase.ErrMissingServiceKey) || errors.Is(err, supabase.ErrMissingURL) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	rows := make([]categoryRow, len(inventory.DefaultCategories))
	for i, name := range inventory.DefaultCategories {
		rows[i] = categoryRow{TenantID: tenantID.String(), Name: name}
	}
	if err := admin.Upsert(ctx, "inventory_categories", "tenant_id,name", rows, nil); err != nil {
		return fmt.Errorf("seed categories for %s: %w", tenantID, err)
	}

	slog.Info("tenant provisioned", "tenant_id", tenantID, "categories", len(rows))
	return nil
}
