package handlers

import (
	"fmt"
	"io"
	"net/http"

	"swiftincorp.ng/api/models"
)

// readUploadedFile pulls one file out of a multipart form, bounded by the
// configured upload ceiling. Returns (nil, "", "", nil) when the field is
// absent so callers can treat media as optional.
func (s *Server) readUploadedFile(r *http.Request, field string) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		return nil, "", "", fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, "", "", nil
	}
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, header.Filename, contentType, nil
}

// Upload relays one file to object storage and returns the stored media,
// including the variant ladder for images.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, contentType, err := s.readUploadedFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	if data == nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}

	result, err := s.Relay.Upload(r.Context(), filename, contentType, data)
	if err != nil {
		writeUpstreamError(w, "upload media", err)
		return
	}

	s.audit(r.Context(), "upload", fmt.Sprintf("uploaded %s (%d bytes)", filename, len(data)))
	writeJSON(w, http.StatusCreated, result)
}

// uploadOptionalMedia relays a form file when present; a missing field is
// not an error.
func (s *Server) uploadOptionalMedia(r *http.Request, field string) (*models.Media, error) {
	data, filename, contentType, err := s.readUploadedFile(r, field)
	if err != nil || data == nil {
		return nil, err
	}
	return s.Relay.Upload(r.Context(), filename, contentType, data)
}
