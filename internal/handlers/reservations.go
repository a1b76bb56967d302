package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"desideri-go/internal/db"
	"desideri-go/internal/domain"
)

func reservationFilter(r *http.Request) (db.ReservationFilter, error) {
	q := r.URL.Query()
	f := db.ReservationFilter{
		Day:  strings.TrimSpace(q.Get("day")),
		Zone: strings.TrimSpace(q.Get("zone")),
	}
	if v := strings.TrimSpace(q.Get("shift")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("invalid shift")
		}
		f.Shift = n
	}
	return f, nil
}

func (s *Server) ReservationsGet(w http.ResponseWriter, r *http.Request) {
	f, err := reservationFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.App.Store().Q.ListReservations(r.Context(), f)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	s.App.FloorPlan().SortReservations(list)
	writeJSON(w, http.StatusOK, list)
}

type tablesResponse struct {
	Day        string             `json:"giorno"`
	Shift      int                `json:"turno"`
	ShiftLabel string             `json:"turno_label"`
	Zones      []string           `json:"zone"`
	Tables     []domain.TableInfo `json:"tavoli"`
}

// TablesGet lays out the floor plan for one day and shift.
func (s *Server) TablesGet(w http.ResponseWriter, r *http.Request) {
	f, err := reservationFilter(r)
	if err != nil || f.Day == "" || f.Shift == 0 {
		writeError(w, http.StatusBadRequest, "day and shift are required")
		return
	}
	f.Zone = ""
	list, err := s.App.Store().Q.ListReservations(r.Context(), f)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	plan := s.App.FloorPlan()
	writeJSON(w, http.StatusOK, tablesResponse{
		Day:        f.Day,
		Shift:      f.Shift,
		ShiftLabel: domain.ShiftLabel(f.Shift),
		Zones:      plan.ZoneNames(),
		Tables:     plan.Tables(list),
	})
}

// bookReservation stores res once it fits the bookings of its day and shift,
// and writes the error response when it does not.
func (s *Server) bookReservation(w http.ResponseWriter, r *http.Request, res domain.Reservation) (int64, bool) {
	plan := s.App.FloorPlan()
	id, err := s.App.Store().Q.BookReservation(r.Context(), res, func(existing []domain.Reservation) error {
		return plan.CheckReservation(res, existing)
	})
	switch {
	case err == nil:
		return id, true
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, domain.ErrTableFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnknownTable), errors.Is(err, domain.ErrInvalidReservation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.serverError(w, r, err)
	}
	return 0, false
}

func (s *Server) ReservationCreatePost(w http.ResponseWriter, r *http.Request) {
	var res domain.Reservation
	if !s.decode(w, r, &res) {
		return
	}
	res.ID = 0
	res.Customer = strings.TrimSpace(res.Customer)
	id, ok := s.bookReservation(w, r, res)
	if !ok {
		return
	}
	s.App.Log().Info("reservation created", "id", id, "day", res.Day, "shift", res.Shift, "zone", res.Zone, "table", res.Table)
	s.writeReservation(w, r, id, http.StatusCreated)
}

type reservationPatch struct {
	Day      *string `json:"giorno" validate:"omitempty,datetime=2006-01-02"`
	Shift    *int    `json:"turno" validate:"omitempty,gte=1,lte=3"`
	Zone     *string `json:"zona"`
	Table    *int    `json:"numero_tavolo" validate:"omitempty,gte=1"`
	Customer *string `json:"nome_cliente"`
	People   *int    `json:"numero_persone" validate:"omitempty,gte=1"`
	Phone    *string `json:"recapito_telefonico"`
	Note     *string `json:"note"`
}

func (p reservationPatch) apply(r *domain.Reservation) {
	if p.Day != nil {
		r.Day = *p.Day
	}
	if p.Shift != nil {
		r.Shift = *p.Shift
	}
	if p.Zone != nil {
		r.Zone = *p.Zone
	}
	if p.Table != nil {
		r.Table = *p.Table
	}
	if p.Customer != nil {
		r.Customer = strings.TrimSpace(*p.Customer)
	}
	if p.People != nil {
		r.People = *p.People
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Note != nil {
		r.Note = *p.Note
	}
}

func (s *Server) loadReservation(w http.ResponseWriter, r *http.Request) (*domain.Reservation, bool) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return nil, false
	}
	res, err := s.App.Store().Q.GetReservation(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "reservation not found")
		return nil, false
	}
	return res, true
}

func (s *Server) ReservationPatch(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadReservation(w, r)
	if !ok {
		return
	}
	var p reservationPatch
	if !s.decode(w, r, &p) {
		return
	}
	p.apply(res)
	if _, ok := s.bookReservation(w, r, *res); !ok {
		return
	}
	s.writeReservation(w, r, res.ID, http.StatusOK)
}

func (s *Server) ReservationDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}
	if err := s.App.Store().Q.DeleteReservation(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeReservation(w http.ResponseWriter, r *http.Request, id int64, status int) {
	res, err := s.App.Store().Q.GetReservation(r.Context(), id)
	if err != nil || res == nil {
		s.serverError(w, r, errors.Join(errors.New("reload reservation"), err))
		return
	}
	writeJSON(w, status, res)
}
