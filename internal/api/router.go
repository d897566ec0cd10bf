// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/davishong/rallyfeed/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handler       *Handler
	auth          *AuthMiddleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from its parts.
func NewRouter(handler *Handler, auth *AuthMiddleware, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		auth:          auth,
		chiMiddleware: chiMW,
	}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints: permissive rate limit for monitoring.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Public read endpoints: feed browsing, type metadata, and per-type
	// recommendations are available before signup.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/feed", router.handler.Feed)
		r.Get("/types/{type}", router.handler.TypeSummary)
		r.Get("/types/{type}/compatibility", router.handler.TypeCompatibility)
		r.Get("/types/{type}/recommendations", router.handler.TypeRecommendations)
		r.Get("/ws", router.handler.WebSocket)

		// Funnel tracking accepts anonymous pre-signup events.
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/events", router.handler.TrackEvent)
	})

	// Authenticated endpoints: everything tied to the caller's identity.
	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.Authenticate)

		r.Get("/posts", router.handler.MyPosts)
		r.Get("/type", router.handler.GetMyType)
		r.Put("/type", router.handler.UpsertMyType)
		r.Get("/recommendations", router.handler.MyRecommendations)
	})

	// Post lifecycle: create, edit, delete, bump. Write rate limits apply.
	r.Route("/api/v1/posts", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.Authenticate)

		r.Post("/", router.handler.CreatePost)
		r.Post("/bump-latest", router.handler.BumpLatestPost)
		r.Put("/{id}", router.handler.UpdatePost)
		r.Delete("/{id}", router.handler.DeletePost)
		r.Post("/{id}/bump", router.handler.BumpPost)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
