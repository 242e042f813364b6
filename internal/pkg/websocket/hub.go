package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types pushed to session subscribers
const (
	EventMessageCreated = "message.created"
	EventMessageDeleted = "message.deleted"
)

// Event is one server-to-client notification for a session
type Event struct {
	Type      string      `json:"type"`
	SessionID uuid.UUID   `json:"session_id"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients per session and fans events out to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	counts     chan countRequest
	evictions  chan eviction

	done chan struct{}

	logger zerolog.Logger
}

// eviction drops one user's clients from a session, or every client when
// userID is uuid.Nil.
type eviction struct {
	sessionID uuid.UUID
	userID    uuid.UUID
}

type countRequest struct {
	sessionID uuid.UUID
	reply     chan int
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		evictions:  make(chan eviction),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled,
// then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for sessionID, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, sessionID)
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case req := <-h.counts:
			req.reply <- len(h.clients[req.sessionID])

		case ev := <-h.evictions:
			h.evict(ev)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	if _, ok := h.clients[client.sessionID]; !ok {
		h.clients[client.sessionID] = make(map[*Client]struct{})
	}
	h.clients[client.sessionID][client] = struct{}{}

	h.logger.Info().
		Str("sessionID", client.sessionID.String()).
		Str("userID", client.userID.String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}

	h.logger.Info().
		Str("sessionID", client.sessionID.String()).
		Str("userID", client.userID.String()).
		Msg("Client unregistered")
}

func (h *Hub) evict(ev eviction) {
	for client := range h.clients[ev.sessionID] {
		if ev.userID == uuid.Nil || client.userID == ev.userID {
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) broadcastEvent(event *Event) {
	clients, ok := h.clients[event.SessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("sessionID", event.SessionID.String()).Msg("Failed to marshal event for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop it
			h.unregisterClient(client)
		}
	}

	h.logger.Debug().
		Str("sessionID", event.SessionID.String()).
		Str("type", event.Type).
		Int("clientCount", len(clients)).
		Msg("Event broadcasted to session")
}

// Publish queues an event for the session's subscribers. Delivery is best
// effort: events are dropped when the queue is full or the hub has stopped.
func (h *Hub) Publish(sessionID uuid.UUID, eventType string, data interface{}) {
	event := &Event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case <-h.done:
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("sessionID", sessionID.String()).Str("type", eventType).Msg("Broadcast queue full, event dropped")
	}
}

// Disconnect closes userID's live connections to the session
func (h *Hub) Disconnect(sessionID, userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	h.sendEviction(eviction{sessionID: sessionID, userID: userID})
}

// CloseSession closes every live connection to the session
func (h *Hub) CloseSession(sessionID uuid.UUID) {
	h.sendEviction(eviction{sessionID: sessionID})
}

func (h *Hub) sendEviction(ev eviction) {
	select {
	case <-h.done:
	case h.evictions <- ev:
	}
}

// ClientsCount returns the number of connected clients for a session
func (h *Hub) ClientsCount(sessionID uuid.UUID) int {
	reply := make(chan int, 1)
	select {
	case <-h.done:
		return 0
	case h.counts <- countRequest{sessionID: sessionID, reply: reply}:
		return <-reply
	}
}
