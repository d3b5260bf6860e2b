/*
Package chat contains the real-time core of the messaging server.

This file defines the Hub, which combines the connection gateway and the
event dispatcher. A single goroutine owns the admission/removal sequence so
one connection's admit (including its broadcasts) always completes before
that same connection's disconnect handler can run.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dmline/internal/pkg/logx"
)

// statusUpdateTimeout bounds the durable online-flag write on connect/disconnect.
const statusUpdateTimeout = 5 * time.Second

// StatusStore is the durable mirror of presence. Failures updating it are
// logged and never block the in-memory registry transition: live delivery
// correctness wins over persisted correctness under store faults.
type StatusStore interface {
	SetOnline(ctx context.Context, userID string, online bool, at time.Time) error
}

// Hub admits authenticated connections, keeps the presence registry and the
// durable online flag synchronized with connection lifecycle, and dispatches
// events to live connections.
type Hub struct {
	// registry is the transient truth about who is connected right now.
	registry *Registry

	// users is the durable user store, written best-effort on admit/drop.
	users StatusStore

	// register receives connections that passed handshake authentication.
	register chan *Client

	// unregister receives connections whose transport closed.
	unregister chan *Client

	// stopChan signals the run loop to terminate.
	stopChan chan struct{}

	// wg waits for the run loop during shutdown.
	wg sync.WaitGroup

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub and starts its run loop.
func NewHub(users StatusStore) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	h := &Hub{
		registry:   NewRegistry(),
		users:      users,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
		logger:     hubLogger,
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// Registry exposes presence queries (IsOnline, ListOnline) to other components.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Register hands an authenticated connection to the hub for admission.
// It returns once the run loop has accepted the handoff.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopChan:
		c.logger.Warn().Msg("Hub stopped; connection not admitted.")
		c.closeSendQueue()
	}
}

// Unregister hands a disconnected connection to the hub for removal.
// Safe to call more than once for the same connection.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopChan:
	}
}

// run is the single goroutine that serializes admissions and removals.
func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub run loop started.")

	for {
		select {
		case c := <-h.register:
			h.admit(c)

		case c := <-h.unregister:
			h.drop(c)

		case <-h.stopChan:
			h.logger.Info().Msg("Hub run loop stopped.")
			return
		}
	}
}

// admit registers the connection, mirrors the online flag durably, announces
// the user to everyone, and hands the newcomer the current online snapshot.
func (h *Hub) admit(c *Client) {
	h.registry.Add(c.userID, c)

	h.setOnline(c.userID, true)

	h.logger.Info().
		Str("user_id", c.userID).
		Int("online_users", len(h.registry.ListOnline())).
		Msg("Connection admitted.")

	h.BroadcastAll(NewEvent(EventUserOnline, UserStatusPayload{UserID: c.userID}))

	snapshot := NewEvent(EventUsersOnline, OnlineUsersPayload{UserIDs: h.registry.ListOnline()})
	h.deliverTo([]*Client{c}, snapshot)
}

// drop removes one connection. Only when the user's last connection goes does
// the durable flag flip and the offline broadcast fire; duplicate close
// signals and removals of never-admitted connections do nothing.
func (h *Hub) drop(c *Client) {
	removed, wentOffline := h.registry.Remove(c.userID, c)
	if !removed {
		return
	}

	c.closeSendQueue()

	h.logger.Info().
		Str("user_id", c.userID).
		Bool("went_offline", wentOffline).
		Msg("Connection removed.")

	if !wentOffline {
		return
	}

	h.setOnline(c.userID, false)

	h.BroadcastAll(NewEvent(EventUserOffline, UserStatusPayload{UserID: c.userID}))
}

// setOnline mirrors the presence transition into the durable store.
// Errors are logged only; the registry has already moved on.
func (h *Hub) setOnline(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), statusUpdateTimeout)
	defer cancel()

	if err := h.users.SetOnline(ctx, userID, online, time.Now()); err != nil {
		h.logger.Error().Err(err).
			Str("user_id", userID).
			Bool("online", online).
			Msg("Failed to update durable online flag; registry state unaffected.")
	}
}

// SendToUser delivers the event to every live connection the user currently
// holds. A user with no connections is a silent no-op: delivery is
// best-effort, with no queuing for offline targets. It returns the number of
// connections the event was queued to.
func (h *Hub) SendToUser(userID string, evt Event) int {
	return h.deliverTo(h.registry.HandlesFor(userID), evt)
}

// SendToUsers fans the event out to each listed user, equivalent to calling
// SendToUser per id.
func (h *Hub) SendToUsers(userIDs []string, evt Event) {
	for _, id := range userIDs {
		h.SendToUser(id, evt)
	}
}

// BroadcastAll delivers the event to every live connection across all users.
func (h *Hub) BroadcastAll(evt Event) {
	h.deliverTo(h.registry.AllHandles(), evt)
}

// RelayTyping forwards a typing indicator from sender to the declared
// receiver's connections only, never as a broadcast.
func (h *Hub) RelayTyping(senderID, receiverID string, start bool) {
	name := EventTypingStop
	if start {
		name = EventTypingStart
	}

	h.SendToUser(receiverID, NewEvent(name, UserStatusPayload{UserID: senderID}))
}

// deliverTo marshals the event once and enqueues it on each handle. A handle
// that fails (queue full or already closed) is skipped and routed to
// unregister without aborting the rest of the fan-out.
func (h *Hub) deliverTo(handles []*Client, evt Event) int {
	if len(handles) == 0 {
		return 0
	}

	frame, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().Err(err).Str("event", evt.Name).Msg("Failed to marshal event.")
		return 0
	}

	delivered := 0
	for _, c := range handles {
		if c.enqueue(frame) {
			delivered++
			continue
		}

		h.logger.Warn().
			Str("user_id", c.userID).
			Str("event", evt.Name).
			Msg("Delivery failed; scheduling connection removal.")

		// Non-blocking: deliverTo may run inside the run loop itself.
		select {
		case h.unregister <- c:
		default:
			go h.Unregister(c)
		}
	}

	return delivered
}

// Shutdown stops the run loop and closes every remaining connection's queue.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	close(h.stopChan)
	h.wg.Wait()

	for _, c := range h.registry.AllHandles() {
		c.closeSendQueue()
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}
