package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parleyhq/parley/internal/domain"
)

const keyPrefix = "parley:presence:"

// RedisStore keeps presence in Redis so every process sees the same
// current-room assignment. Suitable for multi-server deployments.
type RedisStore struct {
	client *redis.Client
	server string
}

func NewRedisStore(client *redis.Client, server string) *RedisStore {
	return &RedisStore{client: client, server: server}
}

func (s *RedisStore) key(uid domain.UserID) string {
	return keyPrefix + string(uid)
}

func (s *RedisStore) SetRoom(ctx context.Context, uid domain.UserID, room domain.RoomID) error {
	return s.write(ctx, uid, Record{RoomID: room, Server: s.server, UpdatedAt: time.Now()})
}

func (s *RedisStore) Room(ctx context.Context, uid domain.UserID) (domain.RoomID, bool, error) {
	data, err := s.client.Get(ctx, s.key(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("presence read %s: %w", uid, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", false, fmt.Errorf("presence decode %s: %w", uid, err)
	}
	if rec.RoomID == "" {
		return "", false, nil
	}
	return rec.RoomID, true, nil
}

// ClearRoom writes an empty pointer; the record itself persists.
func (s *RedisStore) ClearRoom(ctx context.Context, uid domain.UserID) error {
	return s.write(ctx, uid, Record{Server: s.server, UpdatedAt: time.Now()})
}

func (s *RedisStore) write(ctx context.Context, uid domain.UserID, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("presence encode %s: %w", uid, err)
	}
	if err := s.client.Set(ctx, s.key(uid), data, 0).Err(); err != nil {
		return fmt.Errorf("presence write %s: %w", uid, err)
	}
	return nil
}
