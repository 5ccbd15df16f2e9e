package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleAssistStats(w http.ResponseWriter, r *http.Request) {
	if s.assist == nil || s.assist.Stats == nil {
		jsonError(w, "assist stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.assist.Model(),
		"stats": s.assist.Stats.Snapshot(),
	})
}
