// Package events publishes order and dish status changes to downstream
// consumers (printers, dashboards) over RabbitMQ.
package events

import (
	"context"
	"time"

	"desideri-go/internal/domain"
)

const (
	TypeOrderCreated      = "order.created"
	TypeOrderUpdated      = "order.updated"
	TypeOrderDeleted      = "order.deleted"
	TypeLineStatusChanged = "line.status.changed"
)

type LineStatusChanged struct {
	OrderID   int64             `json:"comanda_id"`
	LineIDs   []int64           `json:"dettagli"`
	Status    domain.DishStatus `json:"stato"`
	ChangedBy domain.Role       `json:"ruolo"`
	At        time.Time         `json:"at"`
}

type OrderChanged struct {
	Type    string            `json:"type"`
	OrderID int64             `json:"comanda_id"`
	Table   int               `json:"tavolo,omitempty"`
	Phase   domain.OrderPhase `json:"stato,omitempty"`
	At      time.Time         `json:"at"`
}

type Publisher interface {
	PublishLineStatus(ctx context.Context, ev LineStatusChanged) error
	PublishOrder(ctx context.Context, ev OrderChanged) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishLineStatus(context.Context, LineStatusChanged) error { return nil }
func (Nop) PublishOrder(context.Context, OrderChanged) error           { return nil }
func (Nop) Close() error                                               { return nil }
