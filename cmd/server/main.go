package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/parleyhq/parley/internal/adapters/http"
	"github.com/parleyhq/parley/internal/adapters/ws"
	"github.com/parleyhq/parley/internal/auth"
	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/meeting"
	"github.com/parleyhq/parley/internal/presence"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Process-local registries: one instance each, passed by reference.
	conns := core.NewConnRegistry()
	rooms := core.NewRoomRegistry()
	rt := core.NewRouter(conns, rooms)

	var (
		msgBus bus.Bus
		store  presence.Store
		tokens auth.TokenStore
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable")
		}
		msgBus = bus.NewRedis(client)
		store = presence.NewRedisStore(client, cfg.ServerID)
		tokens = auth.NewRedisStore(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis backends selected")
	} else {
		msgBus = bus.NewInProc()
		store = presence.NewMemory(cfg.ServerID)
		tokens = auth.NewMemory()
		log.Info().Msg("in-process backends selected (single node)")
	}

	// Every process re-runs local routing for every published message.
	if err := msgBus.Subscribe(ctx, func(env core.Envelope) {
		rt.Route(env)
	}); err != nil {
		log.Fatal().Err(err).Msg("bus subscribe failed")
	}

	meetings := meeting.NewService(meeting.NewCatalog(), conns, rooms, store, msgBus)

	limiter := ws.NewRateLimiter(cfg.MsgRateLimit, cfg.MsgRateEvery)
	wsCtl := ws.NewController(tokens, conns, msgBus, meetings, limiter, ws.Options{
		ReadLimit:    cfg.ReadLimit,
		IdleTimeout:  cfg.IdleTimeout,
		WriteTimeout: cfg.WriteTimeout,
		SendBuffer:   cfg.SendBuffer,
	})

	handlers := router.NewMeetingHandlers(meetings)
	r := router.SetupRouter(ctx, cfg, tokens, wsCtl, handlers)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("server_id", cfg.ServerID).Msg("parley server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
