// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

//go:build integration

// Package testinfra provides container-backed infrastructure for integration
// tests, using testcontainers-go to run a real NATS JetStream broker instead
// of mocks.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// natsImage pins the broker version used across integration tests.
const natsImage = "nats:2.12-alpine"

// SkipIfNoDocker skips the test when no Docker daemon is reachable, so the
// integration suite degrades gracefully on machines without Docker.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if !isDockerAvailable() {
		t.Skip("skipping: Docker not available")
	}
}

func isDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// NATSContainer is a running NATS JetStream broker for integration tests.
type NATSContainer struct {
	container testcontainers.Container

	// URL is the client connection URL for the broker.
	URL string
}

// NewNATSContainer starts a NATS container with JetStream enabled.
func NewNATSContainer(ctx context.Context) (*NATSContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        natsImage,
		Cmd:          []string{"-js"},
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start NATS container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "4222/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mapped port: %w", err)
	}

	return &NATSContainer{
		container: container,
		URL:       fmt.Sprintf("nats://%s:%s", host, port.Port()),
	}, nil
}

// Terminate stops and removes the container.
func (c *NATSContainer) Terminate(ctx context.Context) error {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Terminate(ctx)
}
