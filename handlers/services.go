package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"swiftincorp.ng/api/models"
)

func (s *Server) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.Storage.ListServices(r.Context())
	if err != nil {
		writeUpstreamError(w, "list services", err)
		return
	}
	if services == nil {
		services = []*models.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

type updateServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func (s *Server) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	service, err := s.Storage.GetService(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, "get service", err)
		return
	}
	if service == nil {
		service = &models.Service{ID: id}
	}

	if req.Name != "" {
		service.Name = req.Name
	}
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.Price != "" {
		service.Price = req.Price
	}
	if service.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	service.UpdatedAt = time.Now().UTC()

	if err := s.Storage.SaveService(r.Context(), service); err != nil {
		writeUpstreamError(w, "save service", err)
		return
	}

	s.audit(r.Context(), "update_service", "updated service "+id)
	writeJSON(w, http.StatusOK, service)
}
