// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package api serves the HTTP surface: feed pagination, post lifecycle,
// personality types, duo recommendations, and funnel event tracking.
package api

import (
	"net/http"
	"time"

	"github.com/davishong/rallyfeed/internal/database"
	"github.com/davishong/rallyfeed/internal/events"
	"github.com/davishong/rallyfeed/internal/recommend"
	"github.com/davishong/rallyfeed/internal/stats"
	"github.com/davishong/rallyfeed/internal/websocket"
)

// Handler bundles the dependencies behind the HTTP endpoints. The stats
// refresher, event bus, and hub are optional; nil disables the feature.
type Handler struct {
	db        *database.DB
	engine    *recommend.Engine
	bus       *events.Bus
	hub       *websocket.Hub
	refresher *stats.Refresher
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(
	db *database.DB,
	engine *recommend.Engine,
	bus *events.Bus,
	hub *websocket.Hub,
	refresher *stats.Refresher,
) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		bus:       bus,
		hub:       hub,
		refresher: refresher,
		startTime: time.Now(),
	}
}

// HealthLive godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startTime).String(),
	}, time.Now())
}

// HealthReady godoc
// @Summary Readiness probe, checks database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"status": "ready"}, time.Now())
}

// WebSocket upgrades the connection for live feed updates.
//
// @Summary Live feed update stream
// @Tags feed
// @Router /api/v1/ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "live updates disabled", nil)
		return
	}
	websocket.ServeWS(h.hub, w, r)
}
