package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"swiftincorp.ng/api/internal/email"
	"swiftincorp.ng/api/internal/logger"
	"swiftincorp.ng/api/models"
)

func (s *Server) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.Storage.ListApplications(r.Context())
	if err != nil {
		writeUpstreamError(w, "list applications", err)
		return
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

type createApplicationRequest struct {
	Email        string            `json:"email"`
	BusinessName string            `json:"business_name"`
	ServiceName  string            `json:"service_name"`
	Details      map[string]string `json:"details"`
	PaymentRef   string            `json:"payment_ref"`
}

func (s *Server) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if req.BusinessName == "" {
		writeError(w, http.StatusBadRequest, "business_name is required")
		return
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:           uuid.Must(uuid.NewRandom()).String(),
		Email:        req.Email,
		BusinessName: req.BusinessName,
		ServiceName:  req.ServiceName,
		Details:      req.Details,
		Status:       models.StatusPending,
		PaymentRef:   req.PaymentRef,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Storage.SaveApplication(r.Context(), app); err != nil {
		writeUpstreamError(w, "save application", err)
		return
	}

	logger.Info("application created", map[string]interface{}{
		"application_id": app.ID,
		"business_name":  app.BusinessName,
	})
	writeJSON(w, http.StatusCreated, app)
}

type updateStatusRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

func (s *Server) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	app, err := s.Storage.GetApplication(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, "get application", err)
		return
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}

	previous := app.Status
	app.Status = req.Status
	app.UpdatedAt = time.Now().UTC()

	if err := s.Storage.SaveApplication(r.Context(), app); err != nil {
		writeUpstreamError(w, "save application", err)
		return
	}

	// Completion notifies the applicant once, on the transition itself.
	if req.Status == models.StatusCompleted && previous != models.StatusCompleted {
		subject, body := email.ApplicationCompleted(app.BusinessName)
		if err := s.Mailer.Send(app.Email, subject, body); err != nil {
			logger.Error("completion email failed", map[string]interface{}{
				"application_id": app.ID,
				"error":          err.Error(),
			})
		}
	}

	s.audit(r.Context(), "update_application_status",
		"application "+id+" status "+string(previous)+" -> "+string(req.Status))
	writeJSON(w, http.StatusOK, app)
}

type updateExpressRequest struct {
	IsExpress bool `json:"is_express"`
}

func (s *Server) UpdateApplicationExpress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateExpressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	app, err := s.Storage.GetApplication(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, "get application", err)
		return
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}

	app.IsExpress = req.IsExpress
	app.UpdatedAt = time.Now().UTC()

	if err := s.Storage.SaveApplication(r.Context(), app); err != nil {
		writeUpstreamError(w, "save application", err)
		return
	}

	s.audit(r.Context(), "update_application_express", "application "+id)
	writeJSON(w, http.StatusOK, app)
}

// TrackApplication is the public lookup: by application id first, then by
// applicant email (most recent case). Only the sanitized view is exposed.
func (s *Server) TrackApplication(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	app, err := s.Storage.GetApplication(r.Context(), query)
	if err != nil {
		writeUpstreamError(w, "track application", err)
		return
	}

	if app == nil {
		apps, err := s.Storage.FindApplicationsByEmail(r.Context(), query)
		if err != nil {
			writeUpstreamError(w, "track application", err)
			return
		}
		if len(apps) > 0 {
			app = apps[0]
		}
	}

	if app == nil {
		writeError(w, http.StatusNotFound, "No application found")
		return
	}
	writeJSON(w, http.StatusOK, app.Tracking())
}
