package bus

import (
	"context"
	"sync"

	"github.com/parleyhq/parley/internal/core"
	"github.com/rs/zerolog/log"
)

const inprocBuffer = 256

// InProc is a single-process bus backed by one channel per subscriber.
// Each subscriber drains its channel in one goroutine, so per-publisher
// order is preserved.
type InProc struct {
	mu   sync.RWMutex
	subs []chan core.Envelope
}

func NewInProc() *InProc {
	return &InProc{}
}

func (b *InProc) Publish(ctx context.Context, env core.Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- env:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *InProc) Subscribe(ctx context.Context, h Handler) error {
	ch := make(chan core.Envelope, inprocBuffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info().Str("module", "bus.inproc").Msg("subscriber stopped")
				return
			case env := <-ch:
				h(env)
			}
		}
	}()
	return nil
}
