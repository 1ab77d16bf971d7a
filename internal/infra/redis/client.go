package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/watermark/internal/infra/storage"
)

// Client wraps Redis operations for checkpoint storage.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClientFromRedis wraps an existing go-redis client.
func NewClientFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func checkpointKey(name string) string {
	return fmt.Sprintf("checkpoint:%s", name)
}

// Load gets the checkpoint stored under name.
func (c *Client) Load(ctx context.Context, name string) (*time.Time, error) {
	val, err := c.rdb.Get(ctx, checkpointKey(name)).Result()
	if err == redis.Nil {
		return nil, nil // No checkpoint yet
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	return storage.ParseCheckpoint(val)
}

// Save replaces the checkpoint stored under name. SET is atomic, so a
// reader never observes a partial value.
func (c *Client) Save(ctx context.Context, name string, ts time.Time) error {
	if err := c.rdb.Set(ctx, checkpointKey(name), storage.FormatCheckpoint(ts), 0).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Clear removes the checkpoint stored under name.
func (c *Client) Clear(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, checkpointKey(name)).Err()
}
