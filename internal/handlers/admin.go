package handlers

import (
	"net/http"

	"desideri-go/internal/db"
)

type statsResponse struct {
	Dialect string `json:"dialect"`
	Counts  string `json:"counts"`
}

func (s *Server) AdminStatsGet(w http.ResponseWriter, r *http.Request) {
	counts, err := s.App.Store().Q.DebugCounts(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Dialect: s.App.Store().Dialect, Counts: counts})
}

// AdminSeedPost re-applies the configured catalog (idempotent upsert by name).
func (s *Server) AdminSeedPost(w http.ResponseWriter, r *http.Request) {
	cat, err := db.LoadCatalog(s.App.Config().CatalogFile)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.App.Store().SeedCatalog(r.Context(), cat); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.App.Log().Info("catalog seed ran", "items", len(cat.Menu))
	s.AdminStatsGet(w, r)
}
