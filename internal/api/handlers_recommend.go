// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/recommend"
)

// sizeParam parses the optional size query parameter. Returns nil when absent
// so the engine applies its default; non-numeric values are rejected.
func sizeParam(w http.ResponseWriter, r *http.Request) (*int, bool) {
	v := r.URL.Query().Get("size")
	if v == "" {
		return nil, true
	}
	size, err := strconv.Atoi(v)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperr.CodeSizeBadRequest, "size must be an integer", nil)
		return nil, false
	}
	return &size, true
}

// MyRecommendations godoc
// @Summary Ranked duo candidates for the caller
// @Description Resolves the caller's stored personality type and returns scored, deduplicated candidates from the recent feed. Fails with PROFILE_NOT_FOUND when the caller has no stored type.
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Param size query int false "Result size (default 20, max 50)"
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/me/recommendations [get]
func (h *Handler) MyRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	profile, err := h.db.GetPersonalityProfile(r.Context(), authorID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	size, ok := sizeParam(w, r)
	if !ok {
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		RequesterType:   profile.Type,
		Size:            size,
		ExcludeAuthorID: &authorID,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, resp, start)
}
