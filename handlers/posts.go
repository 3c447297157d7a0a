package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"swiftincorp.ng/api/internal/media"
	"swiftincorp.ng/api/models"
)

func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Storage.ListPosts(r.Context())
	if err != nil {
		writeUpstreamError(w, "list posts", err)
		return
	}
	for _, post := range posts {
		fillLegacyVariants(post.Media)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.Storage.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUpstreamError(w, "get post", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	fillLegacyVariants(post.Media)
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	uploaded, err := s.uploadOptionalMedia(r, "media")
	if err != nil {
		writeUpstreamError(w, "upload post media", err)
		return
	}

	title := r.FormValue("title")
	body := r.FormValue("body")
	if title == "" || body == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.Must(uuid.NewRandom()).String(),
		Title:     title,
		Body:      body,
		Media:     uploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Storage.SavePost(r.Context(), post); err != nil {
		writeUpstreamError(w, "save post", err)
		return
	}

	s.audit(r.Context(), "create_post", "created post "+post.ID)
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := s.Storage.GetPost(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, "get post", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	if err := s.Storage.DeletePost(r.Context(), id); err != nil {
		writeUpstreamError(w, "delete post", err)
		return
	}

	s.audit(r.Context(), "delete_post", "deleted post "+id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// fillLegacyVariants reconstructs variant URLs for records stored before
// variant metadata was persisted. New uploads carry explicit URLs and are
// left untouched.
func fillLegacyVariants(m *models.Media) {
	if m == nil || len(m.Variants) > 0 || m.URL == "" {
		return
	}
	if m.ContentType != "image/jpeg" && m.ContentType != "image/png" {
		return
	}
	m.Variants = media.VariantURLsFromOriginal(m.URL)
}
