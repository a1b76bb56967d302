package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"desideri-go/internal/app"
	"desideri-go/internal/domain"
)

// NewRouter wires every route. It lives here rather than in app to avoid an
// app<->handlers import cycle.
func NewRouter(a *app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(requestLogger(a.Log()))
	r.Use(chimw.Recoverer)

	r.Use(a.MiddlewareNoStore)
	r.Use(a.MiddlewareLoadSession)

	h := &Server{App: a}

	// Public
	r.Get("/health", h.Health)
	r.Get("/roles", h.RolesGet)
	r.Post("/login", h.LoginPost)
	r.Post("/logout", h.LogoutPost)
	r.Get("/session", h.SessionGet)

	// Long-lived stream, outside the request timeout.
	r.With(a.RequireAuth).Get("/sse", h.SSEGet)

	r.Group(func(ar chi.Router) {
		ar.Use(chimw.Timeout(60 * time.Second))
		ar.Use(a.RequireAuth)

		ar.Get("/menu", h.MenuGet)
		ar.Get("/orders", h.OrdersGet)
		ar.Get("/orders/{id}", h.OrderGet)
		ar.Get("/orders/{id}/events", h.OrderEventsGet)
		ar.Get("/departments/{dept}/orders", h.DepartmentOrdersGet)
		ar.Get("/departments/{dept}/pending", h.DepartmentPendingGet)

		// Gate-checked per department inside the handlers.
		ar.Post("/orders/{id}/categories/{category}/advance", h.CategoryAdvancePost)
		ar.Post("/orders/{id}/categories/{category}/served", h.CategoryServedPost)
		ar.Post("/orders/{id}/departments/{dept}/conclude", h.DepartmentConcludePost)
		ar.Post("/lines/status", h.LineStatusPost)

		ar.Get("/reservations", h.ReservationsGet)
		ar.Get("/reservations/tables", h.TablesGet)
		ar.Post("/reservations", h.ReservationCreatePost)
		ar.Patch("/reservations/{id}", h.ReservationPatch)
		ar.Delete("/reservations/{id}", h.ReservationDelete)

		ar.Group(func(wr chi.Router) {
			wr.Use(a.RequireAnyRole(domain.RoleCashier, domain.RoleWaiter))
			wr.Post("/orders", h.OrderCreatePost)
			wr.Patch("/orders/{id}/note", h.OrderNotePatch)
		})

		ar.Group(func(cr chi.Router) {
			cr.Use(a.RequireRole(domain.RoleCashier))
			cr.Delete("/orders/{id}", h.OrderDelete)

			cr.Post("/menu", h.MenuItemCreatePost)
			cr.Put("/menu/{id}", h.MenuItemUpdatePut)
			cr.Post("/menu/{id}/availability", h.MenuItemAvailabilityPost)
			cr.Delete("/menu/{id}", h.MenuItemDelete)

			cr.Get("/admin/stats", h.AdminStatsGet)
			cr.Post("/admin/seed", h.AdminSeedPost)
		})
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start),
				"req_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
