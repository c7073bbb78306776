package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/redis/go-redis/v9"
)

const tenantTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func TenantKey(slug string) string {
	return "tenant:slug:" + slug
}

func (c *Cache) GetTenant(ctx context.Context, slug string) (*models.Tenant, error) {
	var t models.Tenant
	if err := c.Get(ctx, TenantKey(slug), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Cache) SetTenant(ctx context.Context, t *models.Tenant) error {
	return c.Set(ctx, TenantKey(t.Slug), t, tenantTTL)
}

func (c *Cache) InvalidateTenant(ctx context.Context, slug string) error {
	return c.Delete(ctx, TenantKey(slug))
}
