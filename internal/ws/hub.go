// Package ws pushes order-change signals to the screens of an outlet.
//
// Signals are advisory. A screen that receives one re-fetches its order list;
// a dropped signal is made up for by the next one.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrHubBusy is returned by Publish when the broadcast queue is full.
var ErrHubBusy = errors.New("ws hub queue full")

// Signal tells a screen that an order changed.
type Signal struct {
	Type        string    `json:"type"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	TableNumber string    `json:"table_number,omitempty"`
	Status      string    `json:"status,omitempty"`
}

type delivery struct {
	outletID uuid.UUID
	message  []byte
}

// Hub keeps one room of clients per outlet.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a Hub. Start it with go hub.Run(ctx).
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.outletID] == nil {
				h.rooms[c.outletID] = make(map[*Client]struct{})
			}
			h.rooms[c.outletID][c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case d := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[d.outletID] {
				select {
				case c.send <- d.message:
				default:
					// slow reader; it reconnects and re-fetches
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes c from its room. Callers hold h.mu.
func (h *Hub) drop(c *Client) {
	clients, ok := h.rooms[c.outletID]
	if !ok {
		return
	}
	if _, exists := clients[c]; !exists {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.outletID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for outletID, clients := range h.rooms {
		for c := range clients {
			close(c.send)
		}
		delete(h.rooms, outletID)
	}
}

// Publish queues s for every client of the outlet. It never blocks.
func (h *Hub) Publish(outletID uuid.UUID, s Signal) error {
	message, err := json.Marshal(s)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- delivery{outletID: outletID, message: message}:
		return nil
	default:
		return ErrHubBusy
	}
}

// Clients returns how many screens are connected for the outlet.
func (h *Hub) Clients(outletID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[outletID])
}
