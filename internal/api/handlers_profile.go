// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"time"

	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/models"
)

// GetMyType godoc
// @Summary The caller's stored personality type
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.PersonalityProfile}
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/me/type [get]
func (h *Handler) GetMyType(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	profile, err := h.db.GetPersonalityProfile(r.Context(), authorID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, profile, start)
}

// UpsertMyType godoc
// @Summary Store or replace the caller's personality type
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpsertTypeRequest true "Four-letter type code"
// @Success 200 {object} models.APIResponse{data=models.PersonalityProfile}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/me/type [put]
func (h *Handler) UpsertMyType(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	var req models.UpsertTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	typ, err := compat.ParseType(req.Type)
	if err != nil {
		respondAppError(w, err)
		return
	}

	profile, err := h.db.UpsertPersonalityProfile(r.Context(), authorID, typ)
	if err != nil {
		respondAppError(w, err)
		return
	}
	// Cached recommendations score this author by their old type; drop them.
	h.engine.InvalidateCache()
	respondData(w, http.StatusOK, profile, start)
}
