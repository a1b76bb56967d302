package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"desideri-go/internal/app"
	"desideri-go/internal/db"
	"desideri-go/internal/domain"
	"desideri-go/internal/events"
)

// orderView is an order with every status derived from its current lines.
type orderView struct {
	domain.Order
	Phase       domain.OrderPhase                       `json:"stato"`
	PhaseLabel  string                                  `json:"stato_label"`
	PhaseColor  string                                  `json:"stato_colore"`
	Categories  []domain.CategoryGroup                  `json:"categorie"`
	Departments map[domain.Department]domain.OrderPhase `json:"reparti"`
}

func (s *Server) view(o domain.Order) orderView {
	phase := domain.OrderPhaseOf(o)
	v := orderView{
		Order:       o,
		Phase:       phase,
		PhaseLabel:  phase.Label(),
		PhaseColor:  phase.Color(),
		Categories:  domain.GroupByCategory(o.Lines, s.App.Router()),
		Departments: map[domain.Department]domain.OrderPhase{},
	}
	for _, l := range o.Lines {
		if _, ok := v.Departments[l.Department]; !ok {
			v.Departments[l.Department] = domain.DepartmentPhase(o, l.Department)
		}
	}
	return v
}

func (s *Server) views(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, s.view(o))
	}
	return out
}

type ordersResponse struct {
	Active    []orderView `json:"attive"`
	Concluded []orderView `json:"concluse"`
}

func (s *Server) OrdersGet(w http.ResponseWriter, r *http.Request) {
	orders, err := s.App.Store().Q.ListOrders(r.Context(), db.OrderFilter{
		Waiter: strings.TrimSpace(r.URL.Query().Get("waiter")),
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	split := domain.SplitComplete(orders)
	writeJSON(w, http.StatusOK, ordersResponse{Active: s.views(split.Active), Concluded: s.views(split.Concluded)})
}

// loadOrder fetches the {id} order, writing 404 when it does not exist.
func (s *Server) loadOrder(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return nil, false
	}
	o, err := s.App.Store().Q.GetOrder(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return nil, false
	}
	return o, true
}

func (s *Server) OrderGet(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(*o))
}

func (s *Server) OrderEventsGet(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	evs, err := s.App.Store().Q.ListLineEvents(r.Context(), o.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if evs == nil {
		evs = []db.LineEvent{}
	}
	writeJSON(w, http.StatusOK, evs)
}

func (s *Server) OrderCreatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	ids := make([]int64, 0, len(req.Lines))
	for _, l := range req.Lines {
		ids = append(ids, l.MenuItemID)
	}
	menu, err := s.App.Store().Q.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	draft, err := domain.NewOrder(req, menu, s.App.Router(), time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) || errors.Is(err, domain.ErrMenuUnavailable) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.serverError(w, r, err)
		return
	}

	id, err := s.App.Store().Q.CreateOrder(ctx, draft)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	o, err := s.App.Store().Q.GetOrder(ctx, id)
	if err != nil || o == nil {
		s.serverError(w, r, errors.Join(errors.New("reload created order"), err))
		return
	}

	s.App.Log().Info("order created", "order_id", id, "table", o.Table, "waiter", o.Waiter, "lines", len(o.Lines), "role", app.CurrentRole(r))
	s.orderChanged(r, events.TypeOrderCreated, o)
	writeJSON(w, http.StatusCreated, s.view(*o))
}

type noteRequest struct {
	Note string `json:"note"`
}

func (s *Server) OrderNotePatch(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.App.Store().Q.UpdateOrderNote(r.Context(), o.ID, strings.TrimSpace(req.Note)); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.refreshOrder(w, r, o.ID)
}

func (s *Server) OrderDelete(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	if err := s.App.Store().Q.DeleteOrder(r.Context(), o.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	s.App.Log().Info("order deleted", "order_id", o.ID, "role", app.CurrentRole(r))
	s.orderChanged(r, events.TypeOrderDeleted, o)
	w.WriteHeader(http.StatusNoContent)
}

// refreshOrder re-fetches the order after a mutation, broadcasts it and
// writes it as the response.
func (s *Server) refreshOrder(w http.ResponseWriter, r *http.Request, id int64) {
	o, err := s.App.Store().Q.GetOrder(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	s.orderChanged(r, events.TypeOrderUpdated, o)
	writeJSON(w, http.StatusOK, s.view(*o))
}
