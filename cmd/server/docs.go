// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package main provides the Rallyfeed HTTP server
//
// Rallyfeed is the backend for a duo matchmaking service built around a
// 16-type gaming personality test.
//
// @title Rallyfeed API
// @version 1.0
// @description Duo recruiting feed with cursor pagination, personality-type
// @description compatibility recommendations, and funnel event tracking.
// @description
// @description ## Authentication
// @description
// @description Endpoints under /api/v1/me and /api/v1/posts require a bearer
// @description token issued by the account service. Feed browsing, type
// @description metadata, and per-type recommendations are public.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Mutation endpoints are limited to 30 per minute.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/davishong/rallyfeed/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8090
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the account service.
//
// @tag.name health
// @tag.description Liveness and readiness probes
//
// @tag.name feed
// @tag.description Cursor-paginated duo recruiting feed and live updates
//
// @tag.name posts
// @tag.description Post lifecycle: create, edit, delete, bump
//
// @tag.name types
// @tag.description Personality type metadata and compatibility
//
// @tag.name recommendations
// @tag.description Scored duo candidate recommendations
//
// @tag.name profile
// @tag.description The caller's stored personality type
//
// @tag.name events
// @tag.description Funnel event tracking
package main
