package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*Router, *ConnRegistry, *RoomRegistry) {
	conns := NewConnRegistry()
	rooms := NewRoomRegistry()
	return NewRouter(conns, rooms), conns, rooms
}

func directEnv(to string) Envelope {
	return Envelope{TargetType: TargetDirect, Type: MessageText, ReceiverID: to, SenderID: "sender"}
}

func roomEnv(room string) Envelope {
	return Envelope{TargetType: TargetRoom, Type: MessageText, ReceiverID: room, SenderID: "sender"}
}

func TestRouteDirectDelivers(t *testing.T) {
	rt, conns, _ := newTestRouter()
	c := newFakeConn("u1")
	conns.Bind("u1", c)

	res := rt.Route(directEnv("u1"))
	assert.Equal(t, 1, res.Sent)
	require.Len(t, c.received(), 1)
}

func TestRouteDirectMissIsSilent(t *testing.T) {
	rt, _, _ := newTestRouter()
	res := rt.Route(directEnv("nobody"))
	assert.Equal(t, Delivery{}, res)
}

func TestRouteRoomFanOut(t *testing.T) {
	// Scenario: a room message reaches every member and nobody else.
	rt, conns, rooms := newTestRouter()
	u1 := newFakeConn("u1")
	u2 := newFakeConn("u2")
	u3 := newFakeConn("u3")
	conns.Bind("u1", u1)
	conns.Bind("u2", u2)
	conns.Bind("u3", u3)
	rooms.AddMember("r1", u1)
	rooms.AddMember("r1", u2)

	res := rt.Route(roomEnv("r1"))
	assert.Equal(t, 2, res.Sent)
	assert.Len(t, u1.received(), 1)
	assert.Len(t, u2.received(), 1)
	assert.Empty(t, u3.received(), "non-member receives nothing")
}

func TestRouteRoomEmptyIsSilent(t *testing.T) {
	rt, _, _ := newTestRouter()
	res := rt.Route(roomEnv("empty"))
	assert.Equal(t, Delivery{}, res)
}

func TestRouteRoomMemberFailureIsIsolated(t *testing.T) {
	rt, _, rooms := newTestRouter()
	ok1 := newFakeConn("u1")
	bad := newFakeConn("u2")
	bad.failSend = true
	ok2 := newFakeConn("u3")
	rooms.AddMember("r1", ok1)
	rooms.AddMember("r1", bad)
	rooms.AddMember("r1", ok2)

	res := rt.Route(roomEnv("r1"))
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Dropped)
	assert.Len(t, ok1.received(), 1)
	assert.Len(t, ok2.received(), 1)
}

func TestRouteClosedConnectionDropsFast(t *testing.T) {
	rt, conns, _ := newTestRouter()
	c := newFakeConn("u1")
	conns.Bind("u1", c)
	c.Close()

	res := rt.Route(directEnv("u1"))
	assert.Equal(t, 1, res.Dropped)
	assert.Empty(t, c.received())
}
