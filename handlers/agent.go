package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"swiftincorp.ng/api/models"
)

func (s *Server) GetAgentProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Storage.GetAgentProfile(r.Context())
	if err != nil {
		writeUpstreamError(w, "get agent profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Agent profile not set")
		return
	}
	fillLegacyVariants(profile.Photo)
	writeJSON(w, http.StatusOK, profile)
}

type updateAgentProfileRequest struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Bio      string `json:"bio"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url"`
}

func (s *Server) UpdateAgentProfile(w http.ResponseWriter, r *http.Request) {
	var req updateAgentProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	profile, err := s.Storage.GetAgentProfile(r.Context())
	if err != nil {
		writeUpstreamError(w, "get agent profile", err)
		return
	}
	if profile == nil {
		profile = &models.AgentProfile{ID: uuid.Must(uuid.NewRandom()).String()}
	}

	profile.Name = req.Name
	profile.Title = req.Title
	profile.Bio = req.Bio
	profile.Phone = req.Phone
	profile.Email = req.Email
	if req.PhotoURL != "" {
		profile.Photo = &models.Media{URL: req.PhotoURL}
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.Storage.SaveAgentProfile(r.Context(), profile); err != nil {
		writeUpstreamError(w, "save agent profile", err)
		return
	}

	s.audit(r.Context(), "update_agent_profile", "updated agent profile")
	writeJSON(w, http.StatusOK, profile)
}
