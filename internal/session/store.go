package session

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/todoboard/todoboard-back/internal/config"
)

var ErrNoSession = errors.New("no session")

const keyPrefix = "session:"

// Store maps opaque session tokens to user IDs. Entries expire on their own;
// Refresh slides the expiry forward on activity.
type Store interface {
	Set(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	Get(ctx context.Context, token string) (uint64, error)
	Refresh(ctx context.Context, token string, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

func NewToken() string {
	return uuid.New().String()
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.Config) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+token, strconv.FormatUint(userID, 10), ttl).Err(); err != nil {
		return errors.Wrap(err, "set session")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (uint64, error) {
	v, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, errors.Wrap(err, "get session")
	}
	userID, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse session value")
	}
	return userID, nil
}

func (s *RedisStore) Refresh(ctx context.Context, token string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, keyPrefix+token, ttl).Result()
	if err != nil {
		return errors.Wrap(err, "refresh session")
	}
	if !ok {
		return ErrNoSession
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
