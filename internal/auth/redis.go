package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/parleyhq/parley/internal/domain"
)

const (
	tokenPrefix = "parley:token:"
	userPrefix  = "parley:uid:"
)

// RedisStore keeps issued tokens in Redis so any process can validate
// a handshake. Two keys per login: token -> user for resolution, and
// user -> token so re-issuing can unlink the previous token.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (domain.UserID, error) {
	uid, err := s.client.Get(ctx, tokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenInvalid
		}
		return "", fmt.Errorf("token lookup: %w", err)
	}
	if uid == "" {
		return "", ErrTokenInvalid
	}
	return domain.UserID(uid), nil
}

func (s *RedisStore) Issue(ctx context.Context, uid domain.UserID) (string, error) {
	token := uuid.NewString()

	old, err := s.client.Get(ctx, userPrefix+string(uid)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("token issue: %w", err)
	}
	if old != "" {
		if err := s.client.Del(ctx, tokenPrefix+old).Err(); err != nil {
			return "", fmt.Errorf("token issue: %w", err)
		}
	}

	if err := s.client.Set(ctx, tokenPrefix+token, string(uid), 0).Err(); err != nil {
		return "", fmt.Errorf("token issue: %w", err)
	}
	if err := s.client.Set(ctx, userPrefix+string(uid), token, 0).Err(); err != nil {
		return "", fmt.Errorf("token issue: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	uid, err := s.client.Get(ctx, tokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("token revoke: %w", err)
	}
	if err := s.client.Del(ctx, tokenPrefix+token, userPrefix+uid).Err(); err != nil {
		return fmt.Errorf("token revoke: %w", err)
	}
	return nil
}
