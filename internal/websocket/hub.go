// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package websocket pushes live feed updates to connected clients so open
// feed views reflect new and bumped posts without polling.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/davishong/rallyfeed/internal/logging"
)

// Message types.
const (
	MessageTypeFeedUpdate = "feed_update"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
)

// Message is one WebSocket frame payload.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks connected clients and fans broadcast messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Broadcast queues a message for all connected clients. Drops when the
// broadcast buffer is full rather than blocking the caller.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("type", msg.Type).Msg("websocket broadcast buffer full, dropping")
	}
}

// Serve runs the hub loop until ctx is cancelled. Implements suture.Service,
// so a supervisor restart gives a clean client set.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			closed := h.closeAllClients()
			logging.Info().
				Str("component", "websocket-hub").
				Int("clients_closed", closed).
				Msg("websocket hub stopped")
			return ctx.Err()

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logging.Info().Int("total_clients", total).Msg("websocket client connected")

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logging.Info().Int("total_clients", total).Msg("websocket client disconnected")

		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastToClients delivers one message to every client in ID order.
// Clients with a full send buffer are dropped.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		select {
		case client.send <- msg:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	return count
}

func (h *Hub) String() string { return "websocket-hub" }
