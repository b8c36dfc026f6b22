// go-tagdump
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-tagdump.
//
// go-tagdump is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-tagdump is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-tagdump; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package websocket pushes scan results to browser clients over WebSocket.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16 // per client, messages are dropped when full
)

// Message types
const (
	TypeScanComplete = "scan_complete"
	TypeScanFailed   = "scan_failed"
)

// Message is the envelope of every message sent to clients.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CompletePayload carries the rendered report.
type CompletePayload struct {
	Content string `json:"content"`
}

// FailedPayload carries the failure reason.
type FailedPayload struct {
	Message string `json:"message"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub broadcasts scan notifications to every connected client. It
// implements tagdump.Observer.
type Hub struct {
	clients map[*client]struct{}
	logger  zerolog.Logger
	mu      sync.Mutex
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

var _ tagdump.Observer = (*Hub)(nil)

// OnScanComplete broadcasts the report content.
func (h *Hub) OnScanComplete(content string) {
	h.broadcast(TypeScanComplete, CompletePayload{Content: content})
}

// OnScanFailed broadcasts the failure reason.
func (h *Hub) OnScanFailed(reason string) {
	h.broadcast(TypeScanFailed, FailedPayload{Message: reason})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades HTTP requests to WebSocket connections and serves them
// until the client disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		c := &client{
			conn:   conn,
			sendCh: make(chan Message, sendBuffer),
			done:   make(chan struct{}),
		}
		h.register(c)
		go c.writeLoop()
		c.readLoop()
		h.unregister(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.stop()
		delete(h.clients, c)
	}
}

func (h *Hub) broadcast(typ string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("type", typ).Msg("marshal websocket payload")
		return
	}
	msg := Message{Type: typ, Payload: raw}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.sendCh <- msg:
		default:
			h.logger.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("websocket client too slow, message dropped")
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.logger.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("websocket client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.stop()
	}
}

type client struct {
	conn     *websocket.Conn
	sendCh   chan Message
	done     chan struct{}
	stopOnce sync.Once
}

func (c *client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// writeLoop drains the send channel and writes to the connection.
func (c *client) writeLoop() {
	defer func() { _ = c.conn.Close() }()
	for {
		select {
		case msg := <-c.sendCh:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.stop()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// readLoop discards client messages until the connection fails or the
// client is stopped.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		select {
		case <-c.done:
			return
		default:
		}
	}
}
