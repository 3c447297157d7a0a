package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"swiftincorp.ng/api/models"
)

func (s *Server) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := s.Storage.ListSlides(r.Context())
	if err != nil {
		writeUpstreamError(w, "list slides", err)
		return
	}
	for _, slide := range slides {
		fillLegacyVariants(slide.Media)
	}
	if slides == nil {
		slides = []*models.Slide{}
	}
	writeJSON(w, http.StatusOK, slides)
}

func (s *Server) CreateSlide(w http.ResponseWriter, r *http.Request) {
	uploaded, err := s.uploadOptionalMedia(r, "media")
	if err != nil {
		writeUpstreamError(w, "upload slide media", err)
		return
	}
	if uploaded == nil {
		writeError(w, http.StatusBadRequest, "media file is required")
		return
	}

	slide := &models.Slide{
		ID:        uuid.Must(uuid.NewRandom()).String(),
		Caption:   r.FormValue("caption"),
		Media:     uploaded,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Storage.SaveSlide(r.Context(), slide); err != nil {
		writeUpstreamError(w, "save slide", err)
		return
	}

	s.audit(r.Context(), "create_slide", "created slide "+slide.ID)
	writeJSON(w, http.StatusCreated, slide)
}

func (s *Server) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Storage.DeleteSlide(r.Context(), id); err != nil {
		writeUpstreamError(w, "delete slide", err)
		return
	}

	s.audit(r.Context(), "delete_slide", "deleted slide "+id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
