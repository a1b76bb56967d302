package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/go-chi/chi/v5"

	"desideri-go/internal/app"
	"desideri-go/internal/db"
	"desideri-go/internal/domain"
	"desideri-go/internal/events"
)

func categoryParam(r *http.Request) string {
	raw := chi.URLParam(r, "category")
	if c, err := url.PathUnescape(raw); err == nil {
		return c
	}
	return raw
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request, dept domain.Department) {
	s.App.Log().Warn("status change refused", "role", app.CurrentRole(r), "department", dept, "path", r.URL.Path)
	writeError(w, http.StatusForbidden, "role may not edit "+string(dept)+" lines")
}

// categoryGroup finds the category group of o, re-deriving its department
// from the lines currently in it.
func (s *Server) categoryGroup(o *domain.Order, category string) (domain.CategoryGroup, bool) {
	for _, g := range domain.GroupByCategory(o.Lines, s.App.Router()) {
		if g.Category == category {
			return g, true
		}
	}
	return domain.CategoryGroup{}, false
}

// transitions maps target status -> line ids.
type transitions map[domain.DishStatus][]int64

// add queues l for to unless it is already there. Statuses outside the
// line's department vocabulary are never queued.
func (t transitions) add(l domain.Line, to domain.DishStatus) {
	if to != l.Status && l.Department.Accepts(to) {
		t[to] = append(t[to], l.ID)
	}
}

func (t transitions) targets() []domain.DishStatus {
	out := make([]domain.DishStatus, 0, len(t))
	for st := range t {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// apply writes every pending transition in one transaction, publishes them
// and answers with the refreshed order.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, orderID int64, t transitions) {
	role := app.CurrentRole(r)
	if len(t) > 0 {
		if err := s.App.Store().Q.ApplyLineTransitions(r.Context(), db.LineTransitions(t), role); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	for _, st := range t.targets() {
		ids := t[st]
		s.App.Log().Info("line status changed", "order_id", orderID, "lines", len(ids), "status", st, "role", role)
		s.linesChanged(r, orderID, ids, st)
	}
	s.refreshOrder(w, r, orderID)
}

// CategoryAdvancePost moves every line of one category forward one step.
// Only lines stamped with the category's effective department are touched.
func (s *Server) CategoryAdvancePost(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	g, ok := s.categoryGroup(o, categoryParam(r))
	if !ok {
		writeError(w, http.StatusNotFound, "category not in order")
		return
	}
	if !domain.CanEdit(app.CurrentRole(r), g.Department) {
		s.forbidden(w, r, g.Department)
		return
	}

	t := transitions{}
	for _, l := range g.Lines {
		if l.Department != g.Department || l.Status == domain.StatusCancelled {
			continue
		}
		t.add(l, domain.Advance(l.Status, g.Department, g.Category))
	}
	s.apply(w, r, o.ID, t)
}

type servedRequest struct {
	Served *bool `json:"servito" validate:"required"`
}

// CategoryServedPost is the category circle toggle: served=true moves
// unserved lines to their served status, served=false reverts served lines
// to in preparation. Cashier lines are left alone either way.
func (s *Server) CategoryServedPost(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	var req servedRequest
	if !s.decode(w, r, &req) {
		return
	}
	g, ok := s.categoryGroup(o, categoryParam(r))
	if !ok {
		writeError(w, http.StatusNotFound, "category not in order")
		return
	}
	if !domain.CanEdit(app.CurrentRole(r), g.Department) {
		s.forbidden(w, r, g.Department)
		return
	}

	t := transitions{}
	for _, l := range g.Lines {
		if l.Department != g.Department || l.Status == domain.StatusCancelled {
			continue
		}
		switch {
		case *req.Served && !l.Reached():
			t.add(l, domain.ServedTarget(g.Department, g.Category))
		case !*req.Served && l.Status.Finished():
			t.add(l, domain.Revert(l.Status, g.Department))
		}
	}
	s.apply(w, r, o.ID, t)
}

// DepartmentConcludePost concludes all of a department's open lines.
func (s *Server) DepartmentConcludePost(w http.ResponseWriter, r *http.Request) {
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	dept, err := domain.ParseDepartment(chi.URLParam(r, "dept"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if !domain.CanEdit(app.CurrentRole(r), dept) {
		s.forbidden(w, r, dept)
		return
	}

	t := transitions{}
	for _, l := range o.LinesFor(dept) {
		if l.Status == domain.StatusCancelled {
			continue
		}
		t.add(l, domain.StatusConcluded)
	}
	s.apply(w, r, o.ID, t)
}

type lineStatusRequest struct {
	IDs    []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
	Status string  `json:"stato" validate:"required"`
}

// LineStatusPost sets an explicit status on a list of lines. Every line
// must pass the gate and accept the status, otherwise nothing is written.
func (s *Server) LineStatusPost(w http.ResponseWriter, r *http.Request) {
	var req lineStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	status, err := domain.ParseDishStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	lines, err := s.App.Store().Q.GetLinesByIDs(r.Context(), req.IDs)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if len(lines) != len(uniqueIDs(req.IDs)) {
		writeError(w, http.StatusNotFound, "unknown line ids")
		return
	}

	role := app.CurrentRole(r)
	byOrder := map[int64]transitions{}
	var orderIDs []int64
	for _, l := range lines {
		if !domain.Allow(role, l) {
			s.forbidden(w, r, l.Department)
			return
		}
		if !l.Department.Accepts(status) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("%s is not a %s status", status, l.Department.Label()))
			return
		}
		if byOrder[l.OrderID] == nil {
			byOrder[l.OrderID] = transitions{}
			orderIDs = append(orderIDs, l.OrderID)
		}
		byOrder[l.OrderID].add(l, status)
	}

	if len(orderIDs) == 1 {
		s.apply(w, r, orderIDs[0], byOrder[orderIDs[0]])
		return
	}

	// Lines spanning several orders: one write for all, then notify per order
	// and answer with the lines.
	var changed []int64
	for _, oid := range orderIDs {
		changed = append(changed, byOrder[oid][status]...)
	}
	if len(changed) > 0 {
		if err := s.App.Store().Q.ApplyLineTransitions(r.Context(), db.LineTransitions{status: changed}, role); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	for _, oid := range orderIDs {
		ids := byOrder[oid][status]
		if len(ids) == 0 {
			continue
		}
		s.linesChanged(r, oid, ids, status)
		if o, err := s.App.Store().Q.GetOrder(r.Context(), oid); err == nil && o != nil {
			s.orderChanged(r, events.TypeOrderUpdated, o)
		}
	}
	updated, err := s.App.Store().Q.GetLinesByIDs(r.Context(), req.IDs)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.App.Log().Info("line status changed", "orders", len(orderIDs), "lines", len(changed), "status", status, "role", role)
	writeJSON(w, http.StatusOK, updated)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
