package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Nil is returned by Get when the key does not exist.
const Nil = redis.Nil

// Client wraps the go-redis client with the small command surface the
// rate limiter needs.
type Client struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewClient creates a new Redis client
func NewClient(redisURL string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, log: log}, nil
}

// NewClientFromAddr builds a client against a bare host:port address. Used
// by tests running against miniredis.
func NewClientFromAddr(addr string, log *zap.Logger) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{Addr: addr}), log: log}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		c.log.Warn("redis_get", zap.String("key", key), zap.Error(err))
	}
	return val, err
}

// Set stores a value in Redis with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		c.log.Warn("redis_set", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Incr increments a counter key and returns the new value
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	val, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		c.log.Warn("redis_incr", zap.String("key", key), zap.Error(err))
	}
	return val, err
}

// Expire sets a TTL on an existing key
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	err := c.rdb.Expire(ctx, key, ttl).Err()
	if err != nil {
		c.log.Warn("redis_expire", zap.String("key", key), zap.Error(err))
	}
	return err
}

// TTL returns the remaining time to live of a key
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key).Result()
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
