// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package supervisor wires background workers under a suture supervisor so a
// crashing worker is restarted with backoff instead of taking the process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Config holds restart policy settings.
type Config struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultConfig matches suture's documented defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Supervisor wraps the root suture supervisor.
type Supervisor struct {
	root *suture.Supervisor
}

// New creates a supervisor logging restart events through the given logger.
func New(name string, logger *slog.Logger, cfg Config) *Supervisor {
	handler := &sutureslog.Handler{Logger: logger}

	root := suture.New(name, suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})
	return &Supervisor{root: root}
}

// Add registers a service for supervision.
func (s *Supervisor) Add(svc suture.Service) suture.ServiceToken {
	return s.root.Add(svc)
}

// ServeBackground starts the tree and returns a channel that yields the
// terminal error once the context is cancelled.
func (s *Supervisor) ServeBackground(ctx context.Context) <-chan error {
	return s.root.ServeBackground(ctx)
}
