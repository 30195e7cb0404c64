package meeting

import (
	"sync"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/domain"
)

// Catalog is the room-metadata collaborator: existence, password,
// blacklist, ended flag. The surrounding CRUD layer may substitute a
// database-backed implementation; the in-memory one below serves
// single-node deployments and tests.
type Catalog interface {
	// Get returns the room record, or false when it never existed.
	Get(room domain.RoomID) (*domain.Room, bool)
	// Personal returns the owner's ongoing personal room, or false when
	// none exists or the last one ended. Never creates.
	Personal(owner domain.UserID) (*domain.Room, bool)
	// GetOrCreatePersonal returns the owner's personal room, creating
	// it on first use or after the previous one ended. The second
	// return reports whether a new room was created.
	GetOrCreatePersonal(owner domain.UserID) (*domain.Room, bool)
	Create(name string, owner domain.UserID, joinPass string) *domain.Room
	End(room domain.RoomID)
	Blacklist(room domain.RoomID, uid domain.UserID)
	IsBlacklisted(room domain.RoomID, uid domain.UserID) bool
}

type memoryCatalog struct {
	mu        sync.RWMutex
	rooms     map[domain.RoomID]*domain.Room
	personal  map[domain.UserID]domain.RoomID
	blacklist map[domain.RoomID]map[domain.UserID]struct{}
}

func NewCatalog() Catalog {
	return &memoryCatalog{
		rooms:     make(map[domain.RoomID]*domain.Room),
		personal:  make(map[domain.UserID]domain.RoomID),
		blacklist: make(map[domain.RoomID]map[domain.UserID]struct{}),
	}
}

func (c *memoryCatalog) Get(room domain.RoomID) (*domain.Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[room]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (c *memoryCatalog) Personal(owner domain.UserID) (*domain.Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.personal[owner]
	if !ok {
		return nil, false
	}
	r, ok := c.rooms[id]
	if !ok || r.Ended {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (c *memoryCatalog) GetOrCreatePersonal(owner domain.UserID) (*domain.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.personal[owner]; ok {
		if r, ok := c.rooms[id]; ok && !r.Ended {
			cp := *r
			return &cp, false
		}
	}
	r := &domain.Room{
		ID:    domain.RoomID(uuid.NewString()),
		Name:  string(owner) + "'s meeting",
		Owner: owner,
	}
	c.rooms[r.ID] = r
	c.personal[owner] = r.ID
	cp := *r
	return &cp, true
}

func (c *memoryCatalog) Create(name string, owner domain.UserID, joinPass string) *domain.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := &domain.Room{
		ID:       domain.RoomID(uuid.NewString()),
		Name:     name,
		Owner:    owner,
		JoinPass: joinPass,
	}
	c.rooms[r.ID] = r
	cp := *r
	return &cp
}

func (c *memoryCatalog) End(room domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rooms[room]; ok {
		r.Ended = true
	}
}

func (c *memoryCatalog) Blacklist(room domain.RoomID, uid domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.blacklist[room]
	if !ok {
		set = make(map[domain.UserID]struct{})
		c.blacklist[room] = set
	}
	set[uid] = struct{}{}
}

func (c *memoryCatalog) IsBlacklisted(room domain.RoomID, uid domain.UserID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.blacklist[room][uid]
	return ok
}
