package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager provides Redis-backed rate limiting for webhook deliveries.
// Counters are fixed one-minute windows keyed by source identifier.
type Manager struct {
	redis      *redis.Client
	webhookRPM int
}

func NewManager(redisURL string, webhookRPM int) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{redis: client, webhookRPM: webhookRPM}, nil
}

// NewManagerWithClient wraps an existing client (used in tests)
func NewManagerWithClient(client *redis.Client, webhookRPM int) *Manager {
	return &Manager{redis: client, webhookRPM: webhookRPM}
}

func (m *Manager) Close() error { return m.redis.Close() }

// WebhookRPM returns the configured per-minute webhook budget
func (m *Manager) WebhookRPM() int { return m.webhookRPM }

// AllowWebhook returns allowed=false if the source's minute bucket is
// exhausted; resetSec is the seconds until the window rolls over. A zero
// budget disables limiting entirely.
func (m *Manager) AllowWebhook(ctx context.Context, source string) (allowed bool, resetSec int, err error) {
	if m.webhookRPM <= 0 {
		return true, 0, nil
	}
	now := time.Now().UTC()
	window := now.Unix() / 60
	rk := fmt.Sprintf("rl:webhook:%s:%d", source, window)
	// Use INCR and set TTL if first time
	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	count := int(incr.Val())
	if count > m.webhookRPM {
		secPassed := int(now.Unix() % 60)
		return false, 60 - secPassed, nil
	}
	return true, 0, nil
}
