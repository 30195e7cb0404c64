package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/domain"
)

// fakeConn is a minimal core.Connection for registry and router tests.
type fakeConn struct {
	uid      domain.UserID
	mu       sync.Mutex
	frames   []Frame
	closed   bool
	failSend bool
}

func newFakeConn(uid domain.UserID) *fakeConn {
	return &fakeConn{uid: uid}
}

func (c *fakeConn) UserID() domain.UserID { return c.uid }

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.failSend {
		return fmt.Errorf("send failed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) received() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestConnRegistryBindLookupUnbind(t *testing.T) {
	reg := NewConnRegistry()
	conn := newFakeConn("u1")

	reg.Bind("u1", conn)
	got, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, conn, got.(*fakeConn))

	reg.Unbind("u1")
	_, ok = reg.Lookup("u1")
	assert.False(t, ok)
}

func TestConnRegistryUnbindAbsentIsNoop(t *testing.T) {
	reg := NewConnRegistry()
	reg.Unbind("ghost")
	reg.Unbind("ghost")
	assert.Equal(t, 0, reg.Size())
}

func TestConnRegistryBindSupersedesOldConnection(t *testing.T) {
	reg := NewConnRegistry()
	old := newFakeConn("u1")
	fresh := newFakeConn("u1")

	reg.Bind("u1", old)
	reg.Bind("u1", fresh)

	assert.True(t, old.isClosed(), "previous connection must be closed on rebind")
	assert.False(t, fresh.isClosed())

	got, ok := reg.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, fresh, got.(*fakeConn))
}

func TestConnRegistryUnbindConnRespectsReconnect(t *testing.T) {
	reg := NewConnRegistry()
	old := newFakeConn("u1")
	fresh := newFakeConn("u1")

	reg.Bind("u1", old)
	reg.Bind("u1", fresh)

	// The old connection's read loop exits late; the fresh binding
	// must survive its cleanup.
	assert.False(t, reg.UnbindConn("u1", old))
	_, ok := reg.Lookup("u1")
	assert.True(t, ok)

	assert.True(t, reg.UnbindConn("u1", fresh))
	_, ok = reg.Lookup("u1")
	assert.False(t, ok)
}

func TestConnRegistryConcurrentAccess(t *testing.T) {
	reg := NewConnRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			uid := domain.UserID(fmt.Sprintf("u%d", n))
			reg.Bind(uid, newFakeConn(uid))
			reg.Lookup(uid)
			reg.Unbind(uid)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, reg.Size())
}
