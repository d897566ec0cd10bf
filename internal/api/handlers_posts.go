// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/events"
	"github.com/davishong/rallyfeed/internal/metrics"
	"github.com/davishong/rallyfeed/internal/models"
	"github.com/davishong/rallyfeed/internal/websocket"
)

// CreatePost godoc
// @Summary Create a recruiting post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreatePostRequest true "Post fields"
// @Success 201 {object} models.APIResponse{data=models.PostResponse}
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	var req models.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post := &models.Post{
		AuthorID:     authorID,
		GameMode:     req.GameMode,
		MainPosition: req.MainPosition,
		SubPosition:  req.SubPosition,
		Mic:          req.Mic,
		Content:      req.Content,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.db.InsertPost(r.Context(), post); err != nil {
		respondAppError(w, err)
		return
	}

	h.notifyFeed(events.FeedUpdateCreated, post)
	respondData(w, http.StatusCreated, models.PostResponse{Post: *post}, start)
}

// UpdatePost godoc
// @Summary Edit the caller's post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body models.UpdatePostRequest true "Updated fields"
// @Success 200 {object} models.APIResponse{data=models.PostResponse}
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.db.UpdatePost(r.Context(), postID, authorID, &req); err != nil {
		respondAppError(w, err)
		return
	}
	h.engine.InvalidateCache()

	post, err := h.db.GetPost(r.Context(), postID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondData(w, http.StatusOK, models.PostResponse{Post: *post}, start)
}

// DeletePost godoc
// @Summary Soft-delete the caller's post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.db.SoftDeletePost(r.Context(), postID, authorID); err != nil {
		respondAppError(w, err)
		return
	}

	h.notifyFeed(events.FeedUpdateDeleted, &models.Post{ID: postID, AuthorID: authorID})
	respondData(w, http.StatusOK, map[string]interface{}{"deleted": true}, start)
}

// BumpPost godoc
// @Summary Bump a post back to the top of the feed
// @Description Bumping is limited to once per post per cooldown window.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.APIResponse{data=models.PostResponse}
// @Failure 404 {object} models.APIResponse
// @Failure 429 {object} models.APIResponse
// @Router /api/v1/posts/{id}/bump [post]
func (h *Handler) BumpPost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	post, err := h.db.BumpPost(r.Context(), postID, authorID, time.Now().UTC())
	if err != nil {
		if apperr.IsCode(err, apperr.CodeBumpRateLimited) {
			metrics.BumpRejections.Inc()
		}
		respondAppError(w, err)
		return
	}

	h.notifyFeed(events.FeedUpdateBumped, post)
	respondData(w, http.StatusOK, models.PostResponse{Post: *post}, start)
}

// BumpLatestPost godoc
// @Summary Bump the caller's most recent post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.PostResponse}
// @Failure 404 {object} models.APIResponse
// @Failure 429 {object} models.APIResponse
// @Router /api/v1/posts/bump-latest [post]
func (h *Handler) BumpLatestPost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	authorID := AuthorID(r.Context())

	post, err := h.db.BumpLatestPost(r.Context(), authorID, time.Now().UTC())
	if err != nil {
		if apperr.IsCode(err, apperr.CodeBumpRateLimited) {
			metrics.BumpRejections.Inc()
		}
		respondAppError(w, err)
		return
	}

	h.notifyFeed(events.FeedUpdateBumped, post)
	respondData(w, http.StatusOK, models.PostResponse{Post: *post}, start)
}

// notifyFeed pushes a feed mutation to the event bus and live clients, and
// drops cached recommendations that would otherwise miss the change.
func (h *Handler) notifyFeed(kind events.FeedUpdateKind, post *models.Post) {
	h.engine.InvalidateCache()
	update := events.FeedUpdate{Kind: kind, Post: *post}
	h.bus.PublishFeedUpdate(update)
	if h.hub != nil {
		h.hub.Broadcast(websocket.Message{Type: websocket.MessageTypeFeedUpdate, Data: update})
	}
}

// pathID extracts the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid post id", nil)
		return 0, false
	}
	return id, true
}
