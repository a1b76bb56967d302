package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"desideri-go/internal/db"
	"desideri-go/internal/domain"
)

type menuSection struct {
	Category   string            `json:"categoria"`
	Department domain.Department `json:"reparto"`
	Items      []domain.MenuItem `json:"piatti"`
}

// MenuGet lists the menu grouped by category in menu order. Unavailable
// items are hidden unless all=1.
func (s *Server) MenuGet(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "1"
	items, err := s.App.Store().Q.ListMenu(r.Context(), !all)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	byCat := map[string][]domain.MenuItem{}
	var cats []string
	for _, it := range items {
		if _, ok := byCat[it.Category]; !ok {
			cats = append(cats, it.Category)
		}
		byCat[it.Category] = append(byCat[it.Category], it)
	}
	domain.SortCategories(cats)

	out := make([]menuSection, 0, len(cats))
	for _, c := range cats {
		out = append(out, menuSection{
			Category:   c,
			Department: s.App.Router().Department(c),
			Items:      byCat[c],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type menuItemRequest struct {
	Name        string          `json:"nome" validate:"required"`
	Category    string          `json:"categoria" validate:"required"`
	Price       decimal.Decimal `json:"prezzo"`
	Available   *bool           `json:"disponibile"`
	Description string          `json:"descrizione"`
}

func (s *Server) decodeMenuItem(w http.ResponseWriter, r *http.Request) (menuItemRequest, bool) {
	var req menuItemRequest
	if !s.decode(w, r, &req) {
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if !req.Price.IsPositive() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: map[string]string{"prezzo": "gt"}})
		return req, false
	}
	return req, true
}

func (req menuItemRequest) available() bool { return req.Available == nil || *req.Available }

func (s *Server) MenuItemCreatePost(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMenuItem(w, r)
	if !ok {
		return
	}
	id, err := s.App.Store().Q.CreateMenuItem(r.Context(), db.CreateMenuItemParams{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Available:   req.available(),
		Description: req.Description,
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeMenuItem(w, r, id, http.StatusCreated)
}

func (s *Server) MenuItemUpdatePut(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}
	req, ok := s.decodeMenuItem(w, r)
	if !ok {
		return
	}
	err := s.App.Store().Q.UpdateMenuItem(r.Context(), db.UpdateMenuItemParams{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Available:   req.available(),
		Description: req.Description,
	})
	if !s.menuWriteOK(w, r, err) {
		return
	}
	s.writeMenuItem(w, r, id, http.StatusOK)
}

type availabilityRequest struct {
	Available *bool `json:"disponibile" validate:"required"`
}

func (s *Server) MenuItemAvailabilityPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}
	var req availabilityRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.menuWriteOK(w, r, s.App.Store().Q.SetMenuItemAvailable(r.Context(), id, *req.Available)) {
		return
	}
	s.writeMenuItem(w, r, id, http.StatusOK)
}

// MenuItemDelete refuses items that existing orders still reference;
// mark them unavailable instead.
func (s *Server) MenuItemDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}
	inUse, err := s.App.Store().Q.MenuItemInUse(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if inUse {
		writeError(w, http.StatusConflict, "menu item is referenced by orders")
		return
	}
	if !s.menuWriteOK(w, r, s.App.Store().Q.DeleteMenuItem(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) menuWriteOK(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "menu item not found")
		return false
	}
	s.serverError(w, r, err)
	return false
}

func (s *Server) writeMenuItem(w http.ResponseWriter, r *http.Request, id int64, status int) {
	m, err := s.App.Store().Q.GetMenuItem(r.Context(), id)
	if err != nil || m == nil {
		s.serverError(w, r, errors.Join(errors.New("reload menu item"), err))
		return
	}
	writeJSON(w, status, m)
}
