package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"desideri-go/internal/app"
	"desideri-go/internal/domain"
)

type Server struct {
	App *app.App
}

type roleView struct {
	Role       domain.Role       `json:"ruolo"`
	Label      string            `json:"label"`
	Department domain.Department `json:"reparto,omitempty"`
	Home       string            `json:"home"`
}

func newRoleView(r domain.Role) roleView {
	v := roleView{Role: r, Label: r.Label(), Home: r.Home()}
	if d, ok := r.Department(); ok {
		v.Department = d
	}
	return v
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.App.Store().Ping(r.Context()); err != nil {
		http.Error(w, "db not ok", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) RolesGet(w http.ResponseWriter, r *http.Request) {
	out := make([]roleView, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		out = append(out, newRoleView(role))
	}
	writeJSON(w, http.StatusOK, out)
}

/* ---------------- Login / Logout ---------------- */

type loginRequest struct {
	Role     string `json:"ruolo" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	roleView
	Session app.Session `json:"sessione"`
}

func (s *Server) LoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusUnauthorized, app.ErrBadCredentials.Error())
		return
	}
	if err := s.App.Authenticate(r.Context(), role, req.Password); err != nil {
		if errors.Is(err, app.ErrBadCredentials) {
			s.App.Log().Info("login refused", "role", role)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.serverError(w, r, err)
		return
	}

	sess, err := s.App.SetSessionRole(w, role)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.App.Log().Info("login", "role", role)
	writeJSON(w, http.StatusOK, sessionResponse{roleView: newRoleView(role), Session: sess})
}

func (s *Server) LogoutPost(w http.ResponseWriter, r *http.Request) {
	s.App.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := app.CurrentSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{roleView: newRoleView(sess.Role), Session: sess})
}

func parseIDParam(r *http.Request, key string) (int64, bool) {
	v := strings.TrimSpace(chi.URLParam(r, key))
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil && id > 0
}
