package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Socket is an indirection over *websocket.Conn to ease testing.
type Socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// Conn is a transport endpoint bound to one user. It implements
// core.Connection. Writes go through a buffered channel so a slow
// socket never blocks a broadcast; the write pump owns the socket for
// writing and closes it on exit.
type Conn struct {
	uid          domain.UserID
	sock         Socket
	send         chan core.Frame
	done         chan struct{}
	once         sync.Once
	writeTimeout time.Duration
}

func NewConn(uid domain.UserID, sock Socket, sendBuffer int, writeTimeout time.Duration) *Conn {
	return &Conn{
		uid:          uid,
		sock:         sock,
		send:         make(chan core.Frame, sendBuffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

func (c *Conn) UserID() domain.UserID { return c.uid }

// TrySend never blocks: a full buffer or a closed connection fails
// fast and the frame is dropped for this member only.
func (c *Conn) TrySend(f core.Frame) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrBackpressure
	}
}

func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}

// StartWriteLoop pumps frames to the network until the connection or
// ctx dies.
func (c *Conn) StartWriteLoop(ctx context.Context) {
	go func() {
		defer c.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case data := <-c.send:
				_ = c.sock.SetWriteDeadline(time.Now().Add(c.writeTimeout))
				if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}
		}
	}()
}
