package api

import (
	"net/http"
)

func (s *Server) handleNERStats(w http.ResponseWriter, r *http.Request) {
	if s.nerStats == nil {
		jsonError(w, "ner stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ner_url":     s.cfg.NERURL,
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.nerStats.Snapshot(),
	})
}
