// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/davishong/rallyfeed/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signTestToken(t *testing.T, subject string, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthenticateJWT(t *testing.T) {
	mw := NewAuthMiddleware(&config.AuthConfig{Mode: "jwt", JWTSecret: testSecret})

	var gotAuthorID int64
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthorID = AuthorID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "42", testSecret))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotAuthorID != 42 {
			t.Errorf("author ID = %d, want 42", gotAuthorID)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, "42", "ffffffffffffffffffffffffffffffff"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestAuthenticateNoneModeUsesHeader(t *testing.T) {
	mw := NewAuthMiddleware(&config.AuthConfig{Mode: "none"})

	var gotAuthorID int64
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthorID = AuthorID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Author-ID", "7")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotAuthorID != 7 {
			t.Errorf("author ID = %d, want 7", gotAuthorID)
		}
	})

	// A missing or garbled header must not fall through as author 0.
	for _, tt := range []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"non-numeric header", "abc"},
		{"zero author", "0"},
		{"negative author", "-3"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Author-ID", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	// Covered indirectly by the feed pagination test; this checks the token
	// is opaque but reversible.
	token, err := encodeCursor(nil)
	if err != nil || token != "" {
		t.Fatalf("nil cursor must encode to empty token, got %q, %v", token, err)
	}

	cursor, err := decodeCursor("")
	if err != nil || cursor != nil {
		t.Fatalf("empty token must decode to nil cursor, got %+v, %v", cursor, err)
	}
}
