// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package events

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

// EmbeddedServer runs an in-process nats-server with JetStream, used for
// development and single-node deployments where an external broker is not
// worth operating.
type EmbeddedServer struct {
	ns     *server.Server
	logger zerolog.Logger
}

// StartEmbeddedServer boots an in-process NATS server and waits until it
// accepts connections.
func StartEmbeddedServer(storeDir string, logger zerolog.Logger) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName:         "rallyfeed-embedded",
		Host:               "127.0.0.1",
		Port:               -1, // random free port
		JetStream:          true,
		StoreDir:           storeDir,
		JetStreamMaxMemory: 64 * 1024 * 1024,
		JetStreamMaxStore:  1024 * 1024 * 1024,
		MaxPayload:         8 * 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready within 30s")
	}

	logger.Info().Str("url", ns.ClientURL()).Msg("embedded NATS server started")
	return &EmbeddedServer{ns: ns, logger: logger}, nil
}

// ClientURL returns the URL clients should connect to.
func (e *EmbeddedServer) ClientURL() string {
	return e.ns.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (e *EmbeddedServer) Shutdown() {
	e.ns.Shutdown()
	e.ns.WaitForShutdown()
}
