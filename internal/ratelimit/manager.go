// Package ratelimit provides Redis-backed request rate limiting so multiple
// instances of the service share one budget per client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Manager counts requests per client in fixed one-minute windows.
type Manager struct {
	redis *redis.Client
}

// NewManager connects to Redis and verifies the connection.
func NewManager(redisURL string) (*Manager, error) {
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
	return &Manager{redis: client}, nil
}

func (m *Manager) Close() error { return m.redis.Close() }

// CheckRate increments the client's counter for the current minute window and
// reports whether the request is still within rpm. resetSec is the seconds
// until the window rolls over, for the Retry-After header.
func (m *Manager) CheckRate(ctx context.Context, clientID string, rpm int) (allowed bool, resetSec int, err error) {
	now := time.Now().UTC()
	window := now.Unix() / 60
	key := fmt.Sprintf("rl:%s:%d", clientID, window)

	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if int(incr.Val()) > rpm {
		return false, 60 - int(now.Unix()%60), nil
	}
	return true, 0, nil
}

// Health checks Redis connectivity.
func (m *Manager) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err()
}
