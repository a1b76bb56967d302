package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"desideri-go/internal/app"
	"desideri-go/internal/db"
	"desideri-go/internal/domain"
)

type departmentBoard struct {
	Department domain.Department   `json:"reparto"`
	Label      string              `json:"label"`
	Statuses   []domain.DishStatus `json:"stati"`
	CanEdit    bool                `json:"modificabile"`
	Active     []orderView         `json:"attive"`
	Concluded  []orderView         `json:"concluse"`
	Pending    domain.Pending      `json:"da_servire"`
}

func (s *Server) departmentParam(w http.ResponseWriter, r *http.Request) (domain.Department, bool) {
	dept, err := domain.ParseDepartment(chi.URLParam(r, "dept"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	if !domain.CanView(app.CurrentRole(r), dept) {
		writeError(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return dept, true
}

func (s *Server) departmentOrders(w http.ResponseWriter, r *http.Request, dept domain.Department) ([]domain.Order, bool) {
	orders, err := s.App.Store().Q.ListOrders(r.Context(), db.OrderFilter{Department: dept})
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return orders, true
}

// DepartmentOrdersGet is a department's board: its lines of every order,
// split into active and concluded, plus the dishes still to serve.
func (s *Server) DepartmentOrdersGet(w http.ResponseWriter, r *http.Request) {
	dept, ok := s.departmentParam(w, r)
	if !ok {
		return
	}
	orders, ok := s.departmentOrders(w, r, dept)
	if !ok {
		return
	}

	var split domain.Split
	if dept == domain.DepartmentCashier {
		split = domain.SplitComplete(orders)
	} else {
		split = domain.SplitByDepartment(orders, dept)
	}
	writeJSON(w, http.StatusOK, departmentBoard{
		Department: dept,
		Label:      dept.Label(),
		Statuses:   dept.Statuses(),
		CanEdit:    domain.CanEdit(app.CurrentRole(r), dept),
		Active:     s.views(split.Active),
		Concluded:  s.views(split.Concluded),
		Pending:    domain.PendingDishes(orders, dept),
	})
}

func (s *Server) DepartmentPendingGet(w http.ResponseWriter, r *http.Request) {
	dept, ok := s.departmentParam(w, r)
	if !ok {
		return
	}
	orders, ok := s.departmentOrders(w, r, dept)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.PendingDishes(orders, dept))
}
