package core

import (
	"github.com/parleyhq/parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// Delivery reports fan-out stats to the caller. A miss is not an
// error: delivery is best-effort, at-most-once per connection.
type Delivery struct {
	Sent    int
	Dropped int
}

// Router selects between unicast and room fan-out for an envelope.
// Registries are process-local; the router only ever touches local
// state, which is what lets every process safely re-run routing for
// every bus message.
type Router struct {
	conns *ConnRegistry
	rooms *RoomRegistry
}

func NewRouter(conns *ConnRegistry, rooms *RoomRegistry) *Router {
	return &Router{conns: conns, rooms: rooms}
}

// Route delivers env to its target. Write failures to individual
// members never abort delivery to the rest.
func (rt *Router) Route(env Envelope) Delivery {
	data, err := env.Encode()
	if err != nil {
		log.Error().Str("module", "core.router").Err(err).Msg("encode failed, message dropped")
		return Delivery{}
	}

	switch env.TargetType {
	case TargetDirect:
		return rt.sendToUser(domain.UserID(env.ReceiverID), data)
	case TargetRoom:
		return rt.sendToRoom(domain.RoomID(env.ReceiverID), data)
	}
	// Unreachable for decoded envelopes; guards hand-built ones.
	log.Warn().Str("module", "core.router").Str("target_type", string(env.TargetType)).Msg("unroutable envelope dropped")
	return Delivery{}
}

func (rt *Router) sendToUser(uid domain.UserID, data Frame) Delivery {
	conn, ok := rt.conns.Lookup(uid)
	if !ok {
		// Target not connected here. Silent by design: on a multi-node
		// deployment another process may hold the connection.
		return Delivery{}
	}
	if err := conn.TrySend(data); err != nil {
		log.Debug().Str("module", "core.router").Str("user", string(uid)).Err(err).Msg("direct send dropped")
		return Delivery{Dropped: 1}
	}
	return Delivery{Sent: 1}
}

func (rt *Router) sendToRoom(room domain.RoomID, data Frame) Delivery {
	var res Delivery
	for _, member := range rt.rooms.Members(room) {
		if err := member.TrySend(data); err != nil {
			res.Dropped++
			continue
		}
		res.Sent++
	}
	log.Debug().Str("module", "core.router").Str("room", string(room)).Int("sent", res.Sent).Int("dropped", res.Dropped).Msg("room fan-out")
	return res
}
