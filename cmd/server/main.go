// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package main is the entry point for the Rallyfeed server.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (env > config file > defaults)
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB storing posts, profiles, and funnel events
//  4. Event bus: NATS JetStream via Watermill, optionally embedded, with a
//     BadgerDB spool for outages
//  5. Workers: websocket hub, funnel subscriber, and rank refresher under a
//     suture supervisor
//  6. HTTP server: Chi router with Swagger documentation
//
// Graceful shutdown on SIGINT/SIGTERM drains in-flight requests before
// closing the bus and database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/davishong/rallyfeed/docs" // generated swagger docs

	"github.com/davishong/rallyfeed/internal/api"
	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/database"
	"github.com/davishong/rallyfeed/internal/events"
	"github.com/davishong/rallyfeed/internal/logging"
	"github.com/davishong/rallyfeed/internal/models"
	"github.com/davishong/rallyfeed/internal/recommend"
	"github.com/davishong/rallyfeed/internal/stats"
	"github.com/davishong/rallyfeed/internal/supervisor"
	"github.com/davishong/rallyfeed/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("starting rallyfeed")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Optional embedded NATS server for single-node deployments.
	if cfg.NATS.Enabled && cfg.NATS.Embedded {
		embedded, err := events.StartEmbeddedServer(cfg.NATS.StoreDir, logging.Logger())
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		defer embedded.Shutdown()
		cfg.NATS.URL = embedded.ClientURL()
	}

	bus, err := events.NewBus(cfg, logging.Logger())
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer bus.Close()

	engine := recommend.NewEngine(db, db, logging.Logger(),
		recommend.WithCache(256, 2*time.Minute))

	hub := websocket.NewHub()

	var refresher *stats.Refresher
	if cfg.Stats.Enabled {
		client := stats.NewClient(&cfg.Stats, logging.Logger())
		refresher = stats.NewRefresher(client, db, logging.Logger())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup := supervisor.New("rallyfeed", logging.NewSlogLogger(), supervisor.DefaultConfig())
	sup.Add(hub)
	if refresher != nil {
		sup.Add(refresher)
	}
	if cfg.NATS.Enabled {
		sup.Add(events.NewSubscriber(cfg.NATS.URL, funnelHandler(refresher), logging.Logger()))
	}
	supDone := sup.ServeBackground(ctx)

	handler := api.NewHandler(db, engine, bus, hub, refresher)
	auth := api.NewAuthMiddleware(&cfg.Auth)
	chiMW := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
	})
	router := api.NewRouter(handler, auth, chiMW)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case s := <-sig:
		logging.Info().Str("signal", s.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	cancel()
	<-supDone
	return nil
}

// funnelHandler dispatches consumed funnel events. Signups trigger a rank
// refresh; everything else is already persisted at ingest time.
func funnelHandler(refresher *stats.Refresher) events.FunnelHandler {
	return func(ctx context.Context, ev events.FunnelEvent) error {
		if ev.EventType == models.EventSignupCompleted && refresher != nil && ev.AuthorID != nil {
			refresher.Enqueue(*ev.AuthorID)
		}
		return nil
	}
}
