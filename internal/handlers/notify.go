package handlers

import (
	"net/http"
	"time"

	"desideri-go/internal/app"
	"desideri-go/internal/domain"
	"desideri-go/internal/events"
)

var sseTypes = map[string]string{
	events.TypeOrderCreated: app.EventOrderCreated,
	events.TypeOrderUpdated: app.EventOrderUpdated,
	events.TypeOrderDeleted: app.EventOrderDeleted,
}

// orderChanged pushes an order change to SSE subscribers and the broker.
// Broker failures are logged, never surfaced to the client.
func (s *Server) orderChanged(r *http.Request, typ string, o *domain.Order) {
	depts := make([]domain.Department, 0, len(o.Lines))
	for _, l := range o.Lines {
		depts = append(depts, l.Department)
	}

	var data any = map[string]any{"comanda_id": o.ID}
	if typ != events.TypeOrderDeleted {
		data = s.view(*o)
	}
	s.App.SSE().BroadcastOrder(app.SSEEvent{Type: sseTypes[typ], Data: data}, depts...)

	ev := events.OrderChanged{Type: typ, OrderID: o.ID, Table: o.Table, At: time.Now()}
	if typ != events.TypeOrderDeleted {
		ev.Phase = domain.OrderPhaseOf(*o)
	}
	if err := s.App.Publisher().PublishOrder(r.Context(), ev); err != nil {
		s.App.Log().Warn("publish order event", "type", typ, "order_id", o.ID, "err", err)
	}
}

func (s *Server) linesChanged(r *http.Request, orderID int64, ids []int64, status domain.DishStatus) {
	ev := events.LineStatusChanged{
		OrderID:   orderID,
		LineIDs:   ids,
		Status:    status,
		ChangedBy: app.CurrentRole(r),
		At:        time.Now(),
	}
	if err := s.App.Publisher().PublishLineStatus(r.Context(), ev); err != nil {
		s.App.Log().Warn("publish line status", "order_id", orderID, "status", status, "err", err)
	}
}
