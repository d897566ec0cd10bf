// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package apperr defines the request-level error taxonomy shared by the feed
// and recommendation pipelines.
//
// All errors here are terminal for the current request: they are deterministic
// input errors, not transient faults, so nothing in this package is ever
// retried. Store-layer faults (connectivity, timeouts) are NOT wrapped into
// these types; they propagate unmodified to the serving layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in API responses.
const (
	CodeSizeBadRequest   = "SIZE_BAD_REQUEST"
	CodeTypeNotSupported = "TYPE_NOT_SUPPORTED"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodePostNotFound     = "POST_NOT_FOUND"
	CodeBumpRateLimited  = "BUMP_RATE_LIMITED"
	CodeValidation       = "VALIDATION_ERROR"
)

// Error is a typed request error with a stable machine-readable code and the
// HTTP status it maps to.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 validation error.
func NewValidation(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusBadRequest}
}

// NewNotSupported creates a 400 not-supported error for unknown personality types.
func NewNotSupported(message string) *Error {
	return &Error{Code: CodeTypeNotSupported, Message: message, Status: http.StatusBadRequest}
}

// NewNotFound creates a 404 not-found error.
func NewNotFound(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusNotFound}
}

// NewRateLimited creates a 429 rate-limited error.
func NewRateLimited(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusTooManyRequests}
}

// As unwraps err into an *Error if possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
