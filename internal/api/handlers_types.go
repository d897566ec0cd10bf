// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/davishong/rallyfeed/internal/compat"
	"github.com/davishong/rallyfeed/internal/models"
	"github.com/davishong/rallyfeed/internal/recommend"
)

// pathType parses the {type} URL parameter into a catalog type.
func pathType(w http.ResponseWriter, r *http.Request) (compat.Type, bool) {
	typ, err := compat.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		respondAppError(w, err)
		return "", false
	}
	return typ, true
}

// TypeSummary godoc
// @Summary Personality type metadata
// @Description Alias, description, match lists, and per-position champion picks for one of the 16 types.
// @Tags types
// @Produce json
// @Param type path string true "Four-letter type code, e.g. ADCI"
// @Success 200 {object} models.APIResponse{data=models.TypeSummaryResponse}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/types/{type} [get]
func (h *Handler) TypeSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	typ, ok := pathType(w, r)
	if !ok {
		return
	}

	entry, err := compat.GetEntry(typ)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondData(w, http.StatusOK, models.TypeSummaryResponse{
		Type:        typ,
		Alias:       entry.Alias,
		Description: entry.Description,
		GoodMatches: entry.GoodMatches,
		BadMatches:  entry.BadMatches,
		Picks:       entry.Picks,
	}, start)
}

// TypeCompatibility godoc
// @Summary Good and bad matches for a personality type
// @Tags types
// @Produce json
// @Param type path string true "Four-letter type code"
// @Success 200 {object} models.APIResponse{data=models.CompatibilityResponse}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/types/{type}/compatibility [get]
func (h *Handler) TypeCompatibility(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	typ, ok := pathType(w, r)
	if !ok {
		return
	}

	entry, err := compat.GetEntry(typ)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondData(w, http.StatusOK, models.CompatibilityResponse{
		Type:        typ,
		GoodMatches: entry.GoodMatches,
		BadMatches:  entry.BadMatches,
	}, start)
}

// TypeRecommendations godoc
// @Summary Ranked duo candidates for an arbitrary personality type
// @Description Runs the recommendation pipeline for the given type without requiring a stored profile. Useful for result pages of visitors who have not signed up.
// @Tags types
// @Produce json
// @Param type path string true "Four-letter type code"
// @Param size query int false "Result size (default 20, max 50)"
// @Param exclude_author_id query int false "Author to exclude, typically the requester"
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/types/{type}/recommendations [get]
func (h *Handler) TypeRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	typ, ok := pathType(w, r)
	if !ok {
		return
	}

	req := recommend.Request{RequesterType: typ}
	size, ok := sizeParam(w, r)
	if !ok {
		return
	}
	req.Size = size
	if v := getIntParam(r, "exclude_author_id", 0); v > 0 {
		exclude := int64(v)
		req.ExcludeAuthorID = &exclude
	}

	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, resp, start)
}
