package app

import (
	"context"
	"net/http"

	"desideri-go/internal/domain"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func (a *App) middlewareLoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := a.GetSession(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ctxKeySession, s))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) middlewareNoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// CurrentSession returns the session loaded by MiddlewareLoadSession.
func CurrentSession(r *http.Request) (Session, bool) {
	s, ok := r.Context().Value(ctxKeySession).(Session)
	return s, ok
}

// CurrentRole returns "" for anonymous requests.
func CurrentRole(r *http.Request) domain.Role {
	s, _ := CurrentSession(r)
	return s.Role
}

// Exported wrappers so router wiring can live outside the app package (no handlers import cycle).
func (a *App) MiddlewareLoadSession(next http.Handler) http.Handler {
	return a.middlewareLoadSession(next)
}

func (a *App) MiddlewareNoStore(next http.Handler) http.Handler {
	return a.middlewareNoStore(next)
}
