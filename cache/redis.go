// Package cache stores planner results in Redis, keyed by request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	backend "github.com/redis/go-redis/v9"

	"github.com/katalvlaran/anglepath/planner"
)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "anglepath:routes:"

// Redis implements planner.Cache.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ planner.Cache = (*Redis)(nil)

// Option configures a Redis cache.
type Option func(*Redis)

// WithTTL sets the expiration of stored results. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// New connects a cache to the server at addr.
func New(addr, password string, db int, opts ...Option) *Redis {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Redis {
	r := &Redis{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Redis) key(k string) string { return r.prefix + k }

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	return nil
}

// Get loads the result stored under key.
func (r *Redis) Get(ctx context.Context, key string) (*planner.Result, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get result: %w", err)
	}

	var res planner.Result
	if err := sonic.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("failed to decode result: %w", err)
	}

	return &res, true, nil
}

// Put stores res under key.
func (r *Redis) Put(ctx context.Context, key string, res *planner.Result) error {
	data, err := sonic.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}

	return nil
}

// Close releases the client.
func (r *Redis) Close() error { return r.client.Close() }
