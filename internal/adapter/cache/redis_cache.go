package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkuzmina/exchange-batch/internal/domain"
	"github.com/mkuzmina/exchange-batch/internal/port"
)

var _ port.Cache = (*RedisCache)(nil)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func key(pair string) string { return "ob:" + pair }

func (c *RedisCache) SetBook(ctx context.Context, pair string, snap *domain.BookSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(pair), b, c.ttl).Err()
}

func (c *RedisCache) GetBook(ctx context.Context, pair string) (*domain.BookSnapshot, error) {
	b, err := c.client.Get(ctx, key(pair)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.BookSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, pair string) error {
	return c.client.Del(ctx, key(pair)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
