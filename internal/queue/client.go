package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/schoolhub/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueProvision schedules default data for a freshly onboarded tenant.
// The task id makes repeated enqueues for one tenant a no-op.
func (c *Client) EnqueueProvision(tenantID uuid.UUID) error {
	payload := TenantProvisionPayload{TenantID: tenantID.String()}
	return c.enqueue(TypeTenantProvision, payload,
		asynq.TaskID("provision:"+tenantID.String()),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue("critical"),
	)
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
