package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafe/internal/ws"
)

// SignalPublisher is the websocket side, satisfied by *ws.Hub.
type SignalPublisher interface {
	Publish(outletID uuid.UUID, s ws.Signal) error
}

// HubPublisher turns every event into a re-fetch signal for the outlet's
// screens.
type HubPublisher struct {
	hub SignalPublisher
}

func NewHubPublisher(hub SignalPublisher) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(ctx context.Context, e Event) error {
	err := p.hub.Publish(e.OutletID, ws.Signal{
		Type:        string(e.Type),
		OrderID:     e.OrderID,
		OrderNumber: e.OrderNumber,
		TableNumber: e.TableNumber,
		Status:      e.Status,
	})
	if err != nil {
		return fmt.Errorf("ws signal %s: %w", e.Type, err)
	}
	return nil
}
