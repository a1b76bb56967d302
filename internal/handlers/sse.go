package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"desideri-go/internal/app"
)

func (s *Server) SSEGet(w http.ResponseWriter, r *http.Request) {
	role := app.CurrentRole(r)
	if role == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.App.SSE().Subscribe(app.TopicsFor(role), 32)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hello, _ := json.Marshal(map[string]any{"ok": true, "ruolo": role, "ts": time.Now().Unix()})
	fmt.Fprintf(w, "event: hello\ndata: %s\n\n", hello)
	flusher.Flush()

	keep := time.NewTicker(25 * time.Second)
	defer keep.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keep.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(ev.Data)
			if err != nil {
				s.App.Log().Warn("sse marshal", "type", ev.Type, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, b)
			flusher.Flush()
		}
	}
}
