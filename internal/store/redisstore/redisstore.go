// Package redisstore keeps session keys in Redis so several terminals or hosts
// can share one login.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idilsaglam/adminpanel/internal/store"
)

// Config selects the Redis keyspace.
type Config struct {
	Prefix string
	TTL    time.Duration // 0 keeps keys until removed
}

// Store is a store.Store backed by a Redis client.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps an existing client. The caller owns the client and closes it.
func New(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
