package app

import (
	"net/http"

	"desideri-go/internal/domain"
)

func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentRole(r) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return a.RequireAnyRole(role)
}

func (a *App) RequireAnyRole(roles ...domain.Role) func(http.Handler) http.Handler {
	set := map[domain.Role]bool{}
	for _, r := range roles {
		set[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := CurrentRole(r)
			if role == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !set[role] {
				a.log.Warn("role refused", "role", role, "path", r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
