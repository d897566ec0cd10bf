// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"time"

	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/events"
	"github.com/davishong/rallyfeed/internal/models"
)

// TrackEvent godoc
// @Summary Record a funnel event
// @Description Persists one funnel event (test progress, signup, result card actions) and forwards it to the event bus. Pre-signup events carry only a session ID.
// @Tags events
// @Accept json
// @Produce json
// @Param request body models.TrackEventRequest true "Event fields"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/events [post]
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TrackEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var typ *compat.Type
	var typStr *string
	if req.PersonalityType != "" {
		parsed, err := compat.ParseType(req.PersonalityType)
		if err != nil {
			respondAppError(w, err)
			return
		}
		typ = &parsed
		s := string(parsed)
		typStr = &s
	}

	eventID, err := h.db.InsertEvent(r.Context(), req.AuthorID, req.EventType, typStr, req.SessionID, req.Source)
	if err != nil {
		respondAppError(w, err)
		return
	}

	h.bus.PublishFunnel(events.FunnelEvent{
		EventID:         eventID,
		AuthorID:        req.AuthorID,
		EventType:       models.EventType(req.EventType),
		PersonalityType: typ,
		SessionID:       req.SessionID,
		Source:          req.Source,
		OccurredAt:      time.Now().UTC(),
	})

	// Signups trigger a rank refresh so new profiles show current tiers.
	if req.EventType == string(models.EventSignupCompleted) && h.refresher != nil && req.AuthorID != nil {
		h.refresher.Enqueue(*req.AuthorID)
	}

	respondData(w, http.StatusCreated, map[string]interface{}{"event_id": eventID}, start)
}
