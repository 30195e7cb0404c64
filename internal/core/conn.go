package core

import "github.com/parleyhq/parley/internal/domain"

// Frame is a serialized envelope ready for the wire.
type Frame []byte

// Connection is a live, ordered, bidirectional message stream bound to
// one user identity. Owned by the adapter; the adapter must Close() it.
// After Close, TrySend fails fast and never blocks.
type Connection interface {
	UserID() domain.UserID
	TrySend(Frame) error
	Close()
}
