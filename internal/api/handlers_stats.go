package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.orchestrator.Classifier().Stats()
	if stats == nil {
		jsonError(w, "classification stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":    s.orchestrator.QueueDepth(),
		"classification": stats.Snapshot(),
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rs := s.orchestrator.Classifier().Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(rs),
		"rules": rs,
	})
}
