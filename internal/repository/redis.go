package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage слот в одном ключе redis, без TTL
type RedisStorage struct {
	client *redis.Client
	key    string
}

func NewRedisStorage(client *redis.Client, key string) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    key,
	}
}

// NewRedisClient разбирает REDIS_URL и пингует сервер
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrSlotEmpty
	}
	return raw, nil
}

func (s *RedisStorage) Store(ctx context.Context, payload []byte) error {
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
