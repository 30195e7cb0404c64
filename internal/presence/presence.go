// Package presence records which room a user is currently in. The
// store is the single writer-of-record for "current room": components
// that need the fact read it here instead of caching it, so the local
// registries and the globally true assignment never split-brain.
package presence

import (
	"context"
	"time"

	"github.com/parleyhq/parley/internal/domain"
)

// Record is the stored presence entry. Server identifies the process
// holding the user's connection; useful for operational debugging on
// multi-node deployments.
type Record struct {
	RoomID    domain.RoomID `json:"roomId"`
	Server    string        `json:"server,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Store is the session/presence collaborator. ClearRoom writes an
// empty room pointer rather than deleting the record: the record
// persists across meetings.
type Store interface {
	SetRoom(ctx context.Context, uid domain.UserID, room domain.RoomID) error
	// Room returns the current room and whether one is set.
	Room(ctx context.Context, uid domain.UserID) (domain.RoomID, bool, error)
	ClearRoom(ctx context.Context, uid domain.UserID) error
}
