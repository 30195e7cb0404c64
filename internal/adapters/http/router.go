package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/adapters/ws"
	"github.com/parleyhq/parley/internal/auth"
	"github.com/parleyhq/parley/internal/config"
)

// SetupRouter wires HTTP routes (REST + WS).
// - The lifecycle API is under /api/meeting/*
// - The WebSocket upgrade lives at /ws
func SetupRouter(ctx context.Context, cfg *config.Config, tokens auth.TokenStore, wsCtl *ws.Controller, handlers *MeetingHandlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/meeting", AuthMiddleware(tokens))
	api.POST("/quickStart", handlers.QuickStart)
	api.POST("/preJoin", handlers.PreJoin)
	api.POST("/join", handlers.Join)
	api.POST("/leave", handlers.Leave)
	api.POST("/end", handlers.End)
	api.GET("/current", handlers.Current)

	r.GET("/ws", func(c *gin.Context) {
		wsCtl.HandleUpgrade(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
