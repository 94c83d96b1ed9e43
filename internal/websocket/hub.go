// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package websocket pushes live group events (members joining, new
// recommendation lists, ballots, the selected winner) to connected clients.
//
// Each client subscribes to exactly one group. The Hub owns the subscription
// table and is run under the supervisor; publishers never block on slow
// clients, whose connections are dropped instead.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"

	MessageTypeMemberJoined         = "member_joined"
	MessageTypeMemberLeft           = "member_left"
	MessageTypeSearchUpdated        = "search_updated"
	MessageTypeRecommendationsReady = "recommendations_ready"
	MessageTypeBallotCast           = "ballot_cast"
	MessageTypeGroupStatus          = "group_status"
)

// Message is the envelope written to clients.
type Message struct {
	Type      string    `json:"type"`
	GroupID   string    `json:"group_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Hub tracks clients per group and fans out published messages.
type Hub struct {
	groups     map[string]map[*Client]struct{}
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub. Call RunWithContext to start it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		groups:     make(map[string]map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is done,
// then closes every client and returns ctx.Err().
//
// Shutdown is checked first, then lifecycle events, then broadcasts, so a
// client that registered before a publish always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	set, ok := h.groups[c.groupID]
	if !ok {
		set = make(map[*Client]struct{})
		h.groups[c.groupID] = set
	}
	set[c] = struct{}{}
	total := h.countLocked()
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	h.logger.Debug().Str("group_id", c.groupID).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	removed := h.dropLocked(c)
	total := h.countLocked()
	h.mu.Unlock()

	if removed {
		metrics.WSConnections.Set(float64(total))
		h.logger.Debug().Str("group_id", c.groupID).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// dropLocked removes c and closes its send channel. Must hold mu.
func (h *Hub) dropLocked(c *Client) bool {
	set, ok := h.groups[c.groupID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.groups, c.groupID)
	}
	return true
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.groups {
		n += len(set)
	}
	return n
}

// sortedClients returns the group's clients in connection order.
func sortedClients(set map[*Client]struct{}) []*Client {
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// deliver writes message to every client of its group. Clients whose buffer
// is full are disconnected.
func (h *Hub) deliver(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.groups[message.GroupID]
	var slow []*Client
	for _, c := range sortedClients(set) {
		select {
		case c.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.dropLocked(c)
		h.logger.Warn().Str("group_id", c.groupID).Uint64("client_id", c.id).Msg("dropping slow websocket client")
	}
	if len(slow) > 0 {
		metrics.WSConnections.Set(float64(h.countLocked()))
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	closed := 0
	for groupID, set := range h.groups {
		for _, c := range sortedClients(set) {
			close(c.send)
			closed++
		}
		delete(h.groups, groupID)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)
	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// Publish queues an event for the clients of groupID. It never blocks; when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(groupID, messageType string, data any) {
	message := Message{
		Type:      messageType,
		GroupID:   groupID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Str("group_id", groupID).Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// GroupClientCount returns the number of clients watching groupID.
func (h *Hub) GroupClientCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// MarshalMessage encodes a message.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
