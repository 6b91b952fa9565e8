package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aura-events/concierge-service/internal/config"
)

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed presence store.
func NewRedisStore(redisCfg config.RedisConfig, cfg config.PresenceConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisStore{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
	}, nil
}

func (s *redisStore) keyFor(userID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

func (s *redisStore) MarkOnline(ctx context.Context, userID string) error {
	if err := s.client.Set(ctx, s.keyFor(userID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark user online: %w", err)
	}
	return nil
}

func (s *redisStore) MarkOffline(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.keyFor(userID)).Err(); err != nil {
		return fmt.Errorf("failed to mark user offline: %w", err)
	}
	return nil
}

func (s *redisStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, err := s.client.Get(ctx, s.keyFor(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
