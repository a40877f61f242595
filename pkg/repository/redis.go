package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/sunrisecafe/pkg/config"
	"github.com/example/sunrisecafe/pkg/models"
	"github.com/go-redis/redis/v8"
)

const menuListingKey = "menu:listing"

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// Menu listing cache. Only the public listing is cached; cart pricing always
// reads the catalog directly so price changes propagate to open carts.

func (r *RedisRepository) GetMenu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.GetJSON(ctx, menuListingKey, &items)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisRepository) SetMenu(ctx context.Context, items []models.MenuItem) error {
	return r.SetJSON(ctx, menuListingKey, items, r.config.MenuTTL)
}

func (r *RedisRepository) InvalidateMenu(ctx context.Context) error {
	return r.Del(ctx, menuListingKey)
}
