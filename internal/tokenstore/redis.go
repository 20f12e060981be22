package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore — хранилище токенов в Redis.
// Полезно, когда несколько экземпляров дашборда делят одну сессию
// (например, CLI и локальный web-сервер на разных машинах).
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "dashboard:".
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	const op = "tokenstore.NewRedisStore"

	if prefix == "" {
		prefix = "dashboard:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) AccessToken(ctx context.Context) (string, error) {
	const op = "tokenstore.RedisStore.AccessToken"

	v, err := s.rdb.Get(ctx, s.key(KeyAccessToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, ErrNoToken)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *RedisStore) RefreshToken(ctx context.Context) (string, error) {
	const op = "tokenstore.RedisStore.RefreshToken"

	v, err := s.rdb.Get(ctx, s.key(KeyRefreshToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, ErrNoToken)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *RedisStore) SaveTokens(ctx context.Context, access, refresh string) error {
	const op = "tokenstore.RedisStore.SaveTokens"

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(KeyAccessToken), access, 0)
	pipe.Set(ctx, s.key(KeyRefreshToken), refresh, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *RedisStore) SaveAccessToken(ctx context.Context, access string) error {
	const op = "tokenstore.RedisStore.SaveAccessToken"

	if err := s.rdb.Set(ctx, s.key(KeyAccessToken), access, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	const op = "tokenstore.RedisStore.Clear"

	if err := s.rdb.Del(ctx, s.key(KeyAccessToken), s.key(KeyRefreshToken)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *RedisStore) Close() error { return s.rdb.Close() }
