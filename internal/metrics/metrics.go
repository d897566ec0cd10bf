// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package metrics provides Prometheus instrumentation for the feed and
// recommendation pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Feed metrics
	FeedPagesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_pages_served_total",
			Help: "Total number of feed pages served",
		},
	)

	BumpRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_bump_rejections_total",
			Help: "Total number of bumps rejected by the cooldown",
		},
	)

	// Recommendation metrics
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation pipeline duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendationShortResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_short_results_total",
			Help: "Recommendations that returned fewer authors than requested after dedup",
		},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Recommendation responses served from the in-memory cache",
		},
	)

	// Event pipeline metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Funnel events published to the event bus",
		},
		[]string{"event_type"},
	)

	EventsSpooled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_spooled_total",
			Help: "Funnel events written to the local spool while the bus was unavailable",
		},
	)

	// Stats refresh metrics
	StatsRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_refresh_total",
			Help: "Champion stats refresh attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "skipped", "failed", "dropped"
	)
)

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records one database query duration.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
