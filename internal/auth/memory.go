package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/domain"
)

// Memory is the single-node token store for dev runs and tests.
type Memory struct {
	mu      sync.RWMutex
	byToken map[string]domain.UserID
	byUser  map[domain.UserID]string
}

func NewMemory() *Memory {
	return &Memory{
		byToken: make(map[string]domain.UserID),
		byUser:  make(map[domain.UserID]string),
	}
}

func (m *Memory) Resolve(_ context.Context, token string) (domain.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uid, ok := m.byToken[token]
	if !ok {
		return "", ErrTokenInvalid
	}
	return uid, nil
}

func (m *Memory) Issue(_ context.Context, uid domain.UserID) (string, error) {
	token := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.byUser[uid]; ok {
		delete(m.byToken, old)
	}
	m.byToken[token] = uid
	m.byUser[uid] = token
	return token, nil
}

func (m *Memory) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uid, ok := m.byToken[token]; ok {
		delete(m.byToken, token)
		delete(m.byUser, uid)
	}
	return nil
}
