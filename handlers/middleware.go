package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swiftincorp.ng/api/internal/auth"
	"swiftincorp.ng/api/internal/logger"
)

type ctxKey string

const identityKey ctxKey = "identity"

// actorFromContext returns the administrator email attached by
// requireAdmin, for audit attribution.
func actorFromContext(ctx context.Context) string {
	if identity, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return identity.Email
	}
	return ""
}

// requireAdmin resolves the bearer token and allows only the configured
// administrator through. Missing token -> 401, bad token -> 401, any
// other identity -> 403.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		identity, err := s.Identity.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrNoToken) || errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			writeUpstreamError(w, "resolve identity", err)
			return
		}

		if !strings.EqualFold(identity.Email, s.AdminEmail) {
			logger.Warn("non-admin identity rejected", map[string]interface{}{
				"email": identity.Email,
				"path":  r.URL.Path,
			})
			writeError(w, http.StatusForbidden, "Not allowed")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimited rejects bursts from one address on public write endpoints.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if idx := strings.LastIndex(addr, ":"); idx > 0 {
			addr = addr[:idx]
		}
		if !s.limiter.Allow(addr) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
		})
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// originAllowed matches an Origin header against the configured allow
// list: exact match, or wildcard subdomain entries like "*.example.com".
// Malformed origins are rejected, never fatal.
func originAllowed(allowed []string, origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	for _, entry := range allowed {
		if entry == origin {
			return true
		}
		pattern := entry
		if scheme, rest, ok := strings.Cut(entry, "://"); ok {
			if scheme != parsed.Scheme {
				continue
			}
			pattern = rest
		}
		if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
			if parsed.Host == suffix || strings.HasSuffix(parsed.Host, "."+suffix) {
				return true
			}
		}
	}
	return false
}
