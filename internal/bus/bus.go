// Package bus is the distributed fan-out bridge. A message published
// on any server process reaches every process, and each process re-runs
// local routing; whichever process holds the target connection
// delivers. Lookups that miss are cheap local map reads, which is what
// keeps the layer horizontally scalable.
package bus

import (
	"context"

	"github.com/parleyhq/parley/internal/core"
)

// Handler consumes one envelope from the bus. Subscribers invoke it
// sequentially, which preserves per-publisher ordering end to end.
type Handler func(core.Envelope)

// Publisher publishes an envelope to all subscribing processes.
// Fire-and-forget from the sender's perspective: delivery confirmation
// is never awaited.
type Publisher interface {
	Publish(ctx context.Context, env core.Envelope) error
}

// Subscriber hands every published envelope to the local handler.
// Subscribe returns once the subscription is established; dispatch
// runs in the background until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, h Handler) error
}

// Bus is the capability pair the rest of the system depends on, so the
// concrete transport (in-process channel for single-node runs, Redis
// Pub/Sub for multi-node) is swappable without touching routing logic.
type Bus interface {
	Publisher
	Subscriber
}
