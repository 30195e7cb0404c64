// Package meeting holds the lifecycle controller: creating,
// pre-validating, joining and leaving a meeting, plus the implicit
// leave that runs when a connection dies.
package meeting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/presence"
)

// Service drives the NotJoined -> PreValidated -> Joined -> NotJoined
// transitions. The presence store is the single source of truth for
// "current room"; the service reads it on every operation instead of
// caching it.
type Service struct {
	catalog Catalog
	conns   *core.ConnRegistry
	rooms   *core.RoomRegistry
	store   presence.Store
	pub     bus.Publisher
}

func NewService(catalog Catalog, conns *core.ConnRegistry, rooms *core.RoomRegistry, store presence.Store, pub bus.Publisher) *Service {
	return &Service{catalog: catalog, conns: conns, rooms: rooms, store: store, pub: pub}
}

// QuickStart creates or reuses the caller's personal room. Starting
// twice never creates a duplicate; an ongoing personal room is a
// no-op success.
func (s *Service) QuickStart(ctx context.Context, uid domain.UserID) (*domain.Room, error) {
	cur, active, err := s.store.Room(ctx, uid)
	if err != nil {
		return nil, storageErr("quickStart", err)
	}
	// Check the presence pointer before touching the catalog so a
	// rejected call creates nothing.
	if active {
		room, ok := s.catalog.Personal(uid)
		if !ok || room.ID != cur {
			return nil, ErrAlreadyInMeeting
		}
		return room, nil
	}

	room, created := s.catalog.GetOrCreatePersonal(uid)
	if created {
		log.Info().Str("module", "meeting").Str("room", string(room.ID)).Str("owner", string(uid)).Msg("personal room created")
	}
	return room, nil
}

// PreJoin validates that a join would succeed. No side effects, so a
// client can probe (e.g. prompt for a password) before committing.
func (s *Service) PreJoin(ctx context.Context, room domain.RoomID, uid domain.UserID, password string) error {
	r, ok := s.catalog.Get(room)
	if !ok || r.Ended {
		return ErrRoomNotFound
	}
	if r.Protected() && r.JoinPass != password {
		return ErrPasswordMismatch
	}
	if s.catalog.IsBlacklisted(room, uid) {
		return ErrForbidden
	}
	return nil
}

// Join validates, registers membership, records presence, and
// announces the arrival to the room. It returns the connected roster;
// ordering is arbitrary. Re-joining the current room is idempotent.
func (s *Service) Join(ctx context.Context, room domain.RoomID, uid domain.UserID, password, displayName string) ([]domain.UserID, error) {
	member, err := domain.NewMember(uid, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.PreJoin(ctx, room, uid, password); err != nil {
		return nil, err
	}

	cur, active, err := s.store.Room(ctx, uid)
	if err != nil {
		return nil, storageErr("join", err)
	}
	if active && cur != room {
		return nil, ErrAlreadyInMeeting
	}

	conn, ok := s.conns.Lookup(uid)
	if !ok {
		return nil, ErrNotConnected
	}

	s.rooms.AddMember(room, conn)
	if err := s.store.SetRoom(ctx, uid, room); err != nil {
		s.rooms.RemoveMember(room, uid)
		return nil, storageErr("join", err)
	}

	s.announce(ctx, room, member, "joined")
	log.Info().Str("module", "meeting").Str("room", string(room)).Str("user", string(uid)).Msg("joined")
	return s.rooms.MemberIDs(room), nil
}

// Leave removes membership, clears the presence pointer, and notifies
// the room. Leaving a room one is not in is a safe no-op.
func (s *Service) Leave(ctx context.Context, room domain.RoomID, uid domain.UserID) error {
	cur, active, err := s.store.Room(ctx, uid)
	if err != nil {
		return storageErr("leave", err)
	}

	s.rooms.RemoveMember(room, uid)
	if !active || cur != room {
		return nil
	}

	if err := s.store.ClearRoom(ctx, uid); err != nil {
		return storageErr("leave", err)
	}
	s.announce(ctx, room, &domain.Member{UserID: uid}, "left")
	log.Info().Str("module", "meeting").Str("room", string(room)).Str("user", string(uid)).Msg("left")
	return nil
}

// HandleDisconnect runs the same cleanup as an explicit Leave for
// whatever room the presence store attributes to uid. This is what
// keeps ghost members out after a client crash.
func (s *Service) HandleDisconnect(ctx context.Context, uid domain.UserID) error {
	cur, active, err := s.store.Room(ctx, uid)
	if err != nil {
		return storageErr("disconnect", err)
	}
	if !active {
		return nil
	}
	return s.Leave(ctx, cur, uid)
}

// End marks the room ended and evicts every remaining member. Only
// the owner may end a room.
func (s *Service) End(ctx context.Context, room domain.RoomID, uid domain.UserID) error {
	r, ok := s.catalog.Get(room)
	if !ok {
		return ErrRoomNotFound
	}
	if r.Owner != uid {
		return ErrForbidden
	}

	s.catalog.End(room)
	s.announce(ctx, room, &domain.Member{UserID: uid}, "ended")
	for _, member := range s.rooms.MemberIDs(room) {
		s.rooms.RemoveMember(room, member)
		if err := s.store.ClearRoom(ctx, member); err != nil {
			return storageErr("end", err)
		}
	}
	log.Info().Str("module", "meeting").Str("room", string(room)).Msg("room ended")
	return nil
}

// CurrentRoom reports the presence store's view for uid.
func (s *Service) CurrentRoom(ctx context.Context, uid domain.UserID) (domain.RoomID, bool, error) {
	cur, active, err := s.store.Room(ctx, uid)
	if err != nil {
		return "", false, storageErr("currentRoom", err)
	}
	return cur, active, nil
}

type roomEvent struct {
	Event       string        `json:"event"`
	UserID      domain.UserID `json:"userId"`
	DisplayName string        `json:"displayName,omitempty"`
}

// announce publishes a room-wide lifecycle event. Fire-and-forget: a
// bus failure is logged, never surfaced to the lifecycle caller.
func (s *Service) announce(ctx context.Context, room domain.RoomID, member *domain.Member, event string) {
	content, err := json.Marshal(roomEvent{Event: event, UserID: member.UserID, DisplayName: member.DisplayName})
	if err != nil {
		log.Error().Str("module", "meeting").Err(err).Msg("event encode failed")
		return
	}
	env := core.Envelope{
		TargetType: core.TargetRoom,
		Type:       core.MessageEvent,
		ReceiverID: string(room),
		SenderID:   member.UserID,
		Content:    content,
		SendTime:   time.Now().UnixMilli(),
	}
	if err := s.pub.Publish(ctx, env); err != nil {
		log.Warn().Str("module", "meeting").Str("room", string(room)).Err(err).Msg("event publish failed")
	}
}
