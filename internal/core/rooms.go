package core

import (
	"sync"

	"github.com/parleyhq/parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomRegistry maps a room to the set of connections currently inside
// it. Member sets are created lazily on first add and dropped when the
// last member leaves, so empty rooms never leak.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]Connection
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]map[domain.UserID]Connection)}
}

func (r *RoomRegistry) AddMember(room domain.RoomID, conn Connection) {
	uid := conn.UserID()
	r.mu.Lock()
	set, ok := r.rooms[room]
	if !ok {
		set = make(map[domain.UserID]Connection)
		r.rooms[room] = set
	}
	set[uid] = conn
	r.mu.Unlock()
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("user", string(uid)).Msg("member added")
}

// RemoveMember is a no-op when the user is not in the room.
func (r *RoomRegistry) RemoveMember(room domain.RoomID, uid domain.UserID) {
	r.mu.Lock()
	if set, ok := r.rooms[room]; ok {
		delete(set, uid)
		if len(set) == 0 {
			delete(r.rooms, room)
		}
	}
	r.mu.Unlock()
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("user", string(uid)).Msg("member removed")
}

// Members returns a snapshot; broadcast iterates it without holding
// the lock, so concurrent joins and leaves never disturb delivery.
func (r *RoomRegistry) Members(room domain.RoomID) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[room]
	if len(set) == 0 {
		return nil
	}
	out := make([]Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// MemberIDs returns the connected roster of a room.
func (r *RoomRegistry) MemberIDs(room domain.RoomID) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[room]
	out := make([]domain.UserID, 0, len(set))
	for uid := range set {
		out = append(out, uid)
	}
	return out
}

func (r *RoomRegistry) IsEmpty(room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room]) == 0
}
