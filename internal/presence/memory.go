package presence

import (
	"context"
	"sync"
	"time"

	"github.com/parleyhq/parley/internal/domain"
)

// Memory is the single-node store used for dev runs and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[domain.UserID]Record
	server  string
}

func NewMemory(server string) *Memory {
	return &Memory{records: make(map[domain.UserID]Record), server: server}
}

func (m *Memory) SetRoom(_ context.Context, uid domain.UserID, room domain.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[uid] = Record{RoomID: room, Server: m.server, UpdatedAt: time.Now()}
	return nil
}

func (m *Memory) Room(_ context.Context, uid domain.UserID) (domain.RoomID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[uid]
	if !ok || rec.RoomID == "" {
		return "", false, nil
	}
	return rec.RoomID, true, nil
}

func (m *Memory) ClearRoom(_ context.Context, uid domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[uid]; ok {
		rec.RoomID = ""
		rec.UpdatedAt = time.Now()
		m.records[uid] = rec
	} else {
		m.records[uid] = Record{UpdatedAt: time.Now()}
	}
	return nil
}
