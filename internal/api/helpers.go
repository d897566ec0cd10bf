// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/davishong/rallyfeed/internal/apperr"
	"github.com/davishong/rallyfeed/internal/logging"
	"github.com/davishong/rallyfeed/internal/models"
	"github.com/davishong/rallyfeed/internal/validation"
)

// respondJSON sends a JSON response with caching headers and an ETag.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondData wraps payload in the standard success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: &models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// generateETag creates an ETag from data using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: &models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAppError maps a typed application error to an HTTP response. Unknown
// errors become opaque 500s.
func respondAppError(w http.ResponseWriter, err error) {
	if appErr, ok := apperr.As(err); ok {
		respondError(w, appErr.Status, appErr.Code, appErr.Message, nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
}

// validateRequest validates a struct, returning an API error on failure.
func validateRequest(v interface{}) *models.APIError {
	err := validation.ValidateStruct(v)
	if err == nil {
		return nil
	}
	var reqErr *validation.RequestValidationError
	if errors.As(err, &reqErr) {
		return reqErr.ToAPIError()
	}
	return &models.APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
}

// decodeBody decodes and validates a JSON request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return false
	}
	if apiErr := validateRequest(v); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseCommaSeparated parses a comma-separated string into a slice.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// encodeCursor serializes a feed cursor as URL-safe base64 JSON.
func encodeCursor(cursor *models.FeedCursor) (string, error) {
	if cursor == nil {
		return "", nil
	}
	data, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// decodeCursor parses a client-supplied cursor token. An empty token means
// the first page.
func decodeCursor(token string) (*models.FeedCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperr.NewValidation(apperr.CodeValidation, "malformed cursor")
	}
	var cursor models.FeedCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, apperr.NewValidation(apperr.CodeValidation, "malformed cursor")
	}
	if cursor.PostID <= 0 || cursor.ActivityTime.IsZero() {
		return nil, apperr.NewValidation(apperr.CodeValidation, "malformed cursor")
	}
	return &cursor, nil
}
