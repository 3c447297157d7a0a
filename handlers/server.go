package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"swiftincorp.ng/api/internal/auth"
	"swiftincorp.ng/api/internal/email"
	"swiftincorp.ng/api/internal/logger"
	"swiftincorp.ng/api/internal/media"
	"swiftincorp.ng/api/internal/paystack"
	"swiftincorp.ng/api/internal/ratelimit"
	"swiftincorp.ng/api/models"
	"swiftincorp.ng/api/storage"
)

// Server wires every handler to its capabilities. All external services
// sit behind interfaces so tests can run without the network.
type Server struct {
	Router   chi.Router
	Storage  storage.Storage
	Identity auth.IdentityResolver
	Gateway  paystack.Gateway
	Mailer   email.Mailer
	Relay    *media.Relay

	AdminEmail     string
	WebhookSecret  string
	CallbackURL    string
	MaxUploadBytes int64
	Version        string

	limiter ratelimit.Limiter
}

type Options struct {
	Storage        storage.Storage
	Identity       auth.IdentityResolver
	Gateway        paystack.Gateway
	Mailer         email.Mailer
	Relay          *media.Relay
	AdminEmail     string
	WebhookSecret  string
	CallbackURL    string
	MaxUploadBytes int64
	AllowedOrigins []string
	Version        string
}

func NewServer(opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 25 << 20
	}

	s := &Server{
		Storage:        opts.Storage,
		Identity:       opts.Identity,
		Gateway:        opts.Gateway,
		Mailer:         opts.Mailer,
		Relay:          opts.Relay,
		AdminEmail:     opts.AdminEmail,
		WebhookSecret:  opts.WebhookSecret,
		CallbackURL:    opts.CallbackURL,
		MaxUploadBytes: opts.MaxUploadBytes,
		Version:        opts.Version,
		limiter:        ratelimit.New(10, time.Minute),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(opts.AllowedOrigins, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.Health)

		r.Get("/posts", s.ListPosts)
		r.Get("/posts/{id}", s.GetPost)
		r.Get("/slides", s.ListSlides)
		r.Get("/services", s.ListServices)
		r.Get("/agent-profile", s.GetAgentProfile)
		r.Get("/track", s.TrackApplication)
		r.Post("/applications", s.rateLimited(s.CreateApplication))
		r.Post("/payments/initialize", s.rateLimited(s.InitializePayment))
		r.Post("/payments/webhook", s.PaymentWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/posts", s.CreatePost)
			r.Delete("/posts/{id}", s.DeletePost)
			r.Post("/slides", s.CreateSlide)
			r.Delete("/slides/{id}", s.DeleteSlide)
			r.Put("/services/{id}", s.UpdateService)
			r.Get("/applications", s.ListApplications)
			r.Put("/applications/{id}/status", s.UpdateApplicationStatus)
			r.Put("/applications/{id}/express", s.UpdateApplicationExpress)
			r.Post("/admin/upload", s.Upload)
			r.Put("/agent-profile", s.UpdateAgentProfile)
			r.Get("/logs", s.ListAuditLogs)
		})
	})

	s.Router = r
	return s
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   s.Version,
		Timestamp: time.Now().UTC(),
	})
}

// audit appends a best-effort log entry for a privileged mutation.
// Failures are logged server-side and never surface to the caller.
func (s *Server) audit(ctx context.Context, action, detail string) {
	entry := &models.AuditLog{
		ID:        uuid.Must(uuid.NewRandom()).String(),
		Actor:     actorFromContext(ctx),
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Storage.AppendAuditLog(ctx, entry); err != nil {
		logger.Error("audit log append failed", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}
