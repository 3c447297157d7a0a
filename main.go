package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"swiftincorp.ng/api/handlers"
	"swiftincorp.ng/api/internal/auth"
	"swiftincorp.ng/api/internal/config"
	"swiftincorp.ng/api/internal/email"
	"swiftincorp.ng/api/internal/logger"
	"swiftincorp.ng/api/internal/media"
	"swiftincorp.ng/api/internal/paystack"
	"swiftincorp.ng/api/storage"
)

var version = "dev"

func main() {
	if versionBytes, err := os.ReadFile("VERSION"); err == nil {
		version = strings.TrimSpace(string(versionBytes))
	}

	godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		logger.Error("invalid configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	store, err := storage.NewPostgresStorage(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer store.Close()

	objectStore, err := media.NewS3Store(context.Background(), media.S3Config{
		Bucket:    cfg.StorageBucket,
		Region:    cfg.StorageRegion,
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		logger.Error("failed to configure object storage", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	server := handlers.NewServer(handlers.Options{
		Storage:        store,
		Identity:       auth.NewHTTPResolver(cfg.IdentityServiceURL, cfg.IdentityServiceKey),
		Gateway:        paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey),
		Mailer:         email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom),
		Relay:          &media.Relay{Store: objectStore},
		AdminEmail:     cfg.AdminEmail,
		WebhookSecret:  cfg.PaystackSecretKey,
		CallbackURL:    cfg.PaymentCallbackURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
		Version:        version,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting server", map[string]interface{}{
			"version": version,
			"port":    cfg.Port,
		})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("server stopped")
}
