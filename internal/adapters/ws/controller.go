// Package ws owns the WebSocket edge: handshake authentication,
// connection pumps, and the inbound read path that feeds the bus.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/auth"
	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/meeting"
)

type Options struct {
	ReadLimit    int64
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

// Controller accepts upgrades and runs one read loop per connection.
type Controller struct {
	tokens   auth.TokenStore
	conns    *core.ConnRegistry
	pub      bus.Publisher
	meetings *meeting.Service
	limiter  *RateLimiter
	opts     Options

	upgrader websocket.Upgrader
}

func NewController(tokens auth.TokenStore, conns *core.ConnRegistry, pub bus.Publisher, meetings *meeting.Service, limiter *RateLimiter, opts Options) *Controller {
	return &Controller{
		tokens:   tokens,
		conns:    conns,
		pub:      pub,
		meetings: meetings,
		limiter:  limiter,
		opts:     opts,
		upgrader: websocket.Upgrader{
			// TODO: restrict origins once the UI's origin list is settled.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleUpgrade authenticates the presented token and only then
// completes the protocol switch. On failure: 403, plain text, no
// registry state, underlying connection closed by gin.
func (ctl *Controller) HandleUpgrade(ctx context.Context, c *gin.Context) {
	token := bearerToken(c.Request)
	if token == "" {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	uid, err := ctl.tokens.Resolve(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, auth.ErrTokenInvalid) {
			log.Error().Str("module", "adapters.ws").Err(err).Msg("token resolve failed")
		}
		c.String(http.StatusForbidden, "Forbidden")
		return
	}

	sock, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "adapters.ws").Err(err).Msg("upgrade failed")
		return
	}
	sock.SetReadLimit(ctl.opts.ReadLimit)

	conn := NewConn(uid, sock, ctl.opts.SendBuffer, ctl.opts.WriteTimeout)
	ctl.conns.Bind(uid, conn)
	log.Info().Str("module", "adapters.ws").Str("user", string(uid)).Msg("connection admitted")

	connCtx, cancel := context.WithCancel(ctx)
	conn.StartWriteLoop(connCtx)
	go ctl.readLoop(connCtx, cancel, conn, sock)
}

func (ctl *Controller) readLoop(ctx context.Context, cancel context.CancelFunc, conn *Conn, sock Socket) {
	uid := conn.UserID()
	defer func() {
		cancel()
		conn.Close()
		// A reconnect may have superseded this connection; if so the
		// user is still live and presence and limiter state stay put.
		if ctl.conns.UnbindConn(uid, conn) {
			ctl.limiter.Forget(uid)
			if err := ctl.meetings.HandleDisconnect(context.WithoutCancel(ctx), uid); err != nil {
				log.Error().Str("module", "adapters.ws").Str("user", string(uid)).Err(err).Msg("disconnect cleanup failed")
			}
		}
		log.Info().Str("module", "adapters.ws").Str("user", string(uid)).Msg("connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = sock.SetReadDeadline(time.Now().Add(ctl.opts.IdleTimeout))
		_, data, err := sock.ReadMessage()
		if err != nil {
			return
		}
		ctl.handleInbound(ctx, uid, data)
	}
}

// handleInbound validates, stamps, and publishes one wire frame.
// Malformed input is logged and dropped; the connection stays open.
func (ctl *Controller) handleInbound(ctx context.Context, uid domain.UserID, data []byte) {
	env, err := core.DecodeEnvelope(data)
	if err != nil {
		log.Warn().Str("module", "adapters.ws").Str("user", string(uid)).Err(err).Msg("malformed envelope dropped")
		return
	}

	// Heartbeats refresh the read deadline above and go no further.
	if env.Type == core.MessagePing {
		return
	}

	if !ctl.limiter.Allow(uid) {
		log.Warn().Str("module", "adapters.ws").Str("user", string(uid)).Msg("rate limited, message dropped")
		return
	}

	// Client-supplied identity and timestamps are never trusted.
	env.SenderID = uid
	env.SendTime = time.Now().UnixMilli()

	if err := ctl.pub.Publish(ctx, env); err != nil {
		log.Error().Str("module", "adapters.ws").Str("user", string(uid)).Err(err).Msg("publish failed, message dropped")
	}
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
