// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/davishong/rallyfeed/internal/config"
	"github.com/davishong/rallyfeed/internal/logging"
)

type authContextKey string

const authorIDKey authContextKey = "author_id"

// AuthMiddleware verifies bearer tokens issued by the account service. This
// service never issues tokens itself.
type AuthMiddleware struct {
	mode   string
	secret []byte
}

// NewAuthMiddleware builds the middleware from auth configuration.
func NewAuthMiddleware(cfg *config.AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{
		mode:   cfg.Mode,
		secret: []byte(cfg.JWTSecret),
	}
}

// Authenticate requires a valid bearer token and attaches the caller's author
// ID to the request context. In "none" mode it trusts the X-Author-ID header,
// which is only acceptable for local development.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == "none" {
			authorID, err := strconv.ParseInt(r.Header.Get("X-Author-ID"), 10, 64)
			if err != nil || authorID <= 0 {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid X-Author-ID header", nil)
				return
			}
			ctx := context.WithValue(r.Context(), authorIDKey, authorID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
			return
		}

		authorID, err := m.verify(token)
		if err != nil {
			logging.Debug().Err(err).Msg("token verification failed")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), authorIDKey, authorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verify parses an HS256 token and extracts the subject as the author ID.
func (m *AuthMiddleware) verify(token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, err
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(sub, 10, 64)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// AuthorID returns the authenticated caller's author ID, or 0 when the
// request is unauthenticated.
func AuthorID(ctx context.Context) int64 {
	if id, ok := ctx.Value(authorIDKey).(int64); ok {
		return id
	}
	return 0
}
