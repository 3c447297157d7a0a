package handlers

import (
	"net/http"
	"strconv"

	"swiftincorp.ng/api/models"
)

func (s *Server) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	logs, err := s.Storage.ListAuditLogs(r.Context(), limit)
	if err != nil {
		writeUpstreamError(w, "list audit logs", err)
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
