package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/config"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix  = "cod:oauth:state:"
	dedupeKeyPrefix = "cod:dedupe:"
)

// RedisStore keeps OAuth states and webhook claims in Redis so that every
// instance behind a load balancer sees them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, state, shop string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, shop, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Consume reads and deletes the state atomically with GETDEL.
func (s *RedisStore) Consume(ctx context.Context, state string) (string, error) {
	shop, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return shop, nil
}

// Claim uses SETNX so only the first caller within ttl wins.
func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, dedupeKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, dedupeKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release key: %w", err)
	}
	return nil
}

var (
	_ ports.StateStore  = (*RedisStore)(nil)
	_ ports.DedupeStore = (*RedisStore)(nil)
)
