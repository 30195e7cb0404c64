package core

import (
	"sync"

	"github.com/parleyhq/parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// ConnRegistry maps a user identity to its live connection. One
// instance per server process, constructed at startup and passed by
// reference; no package-level state.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]Connection
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[domain.UserID]Connection)}
}

// Bind registers conn for uid. A new connection supersedes an old one
// for the same identity: the prior connection, if any, is closed so a
// user never has two live sessions.
func (r *ConnRegistry) Bind(uid domain.UserID, conn Connection) {
	r.mu.Lock()
	old := r.conns[uid]
	r.conns[uid] = conn
	r.mu.Unlock()

	if old != nil {
		old.Close()
		log.Info().Str("module", "core.registry").Str("user", string(uid)).Msg("superseded previous connection")
	}
	log.Info().Str("module", "core.registry").Str("user", string(uid)).Msg("connection bound")
}

func (r *ConnRegistry) Lookup(uid domain.UserID) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[uid]
	return c, ok
}

// Unbind removes the entry for uid. Idempotent.
func (r *ConnRegistry) Unbind(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, uid)
}

// UnbindConn removes the entry only if it still holds conn. The old
// connection's read loop may exit after a reconnect has already bound
// a fresh connection; the fresh binding must survive that.
func (r *ConnRegistry) UnbindConn(uid domain.UserID, conn Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[uid]; ok && cur == conn {
		delete(r.conns, uid)
		return true
	}
	return false
}

func (r *ConnRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
