package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	DatabaseURL string

	IdentityServiceURL string
	IdentityServiceKey string
	AdminEmail         string

	PaystackSecretKey  string
	PaystackBaseURL    string
	PaymentCallbackURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	StorageBucket    string
	StorageRegion    string
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string
	MaxUploadBytes   int64

	AllowedOrigins []string

	LogLevel  string
	LogFormat string
}

func New() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	identityURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityURL == "" {
		return nil, errors.New("IDENTITY_SERVICE_URL environment variable is required")
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return nil, errors.New("ADMIN_EMAIL environment variable is required")
	}

	paystackSecret := os.Getenv("PAYSTACK_SECRET_KEY")
	if paystackSecret == "" {
		return nil, errors.New("PAYSTACK_SECRET_KEY environment variable is required")
	}

	paystackBase := os.Getenv("PAYSTACK_BASE_URL")
	if paystackBase == "" {
		paystackBase = "https://api.paystack.co"
	}

	callbackURL := os.Getenv("PAYMENT_CALLBACK_URL")
	if callbackURL == "" {
		callbackURL = "https://swiftincorp.ng/payment/success"
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUsername := os.Getenv("SMTP_USERNAME")
	smtpPassword := os.Getenv("SMTP_PASSWORD")
	if smtpHost == "" || smtpPort == "" || smtpUsername == "" || smtpPassword == "" {
		return nil, errors.New("SMTP_HOST, SMTP_PORT, SMTP_USERNAME, and SMTP_PASSWORD environment variables are required")
	}

	emailFrom := os.Getenv("EMAIL_FROM")
	if emailFrom == "" {
		emailFrom = smtpUsername
	}

	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		return nil, errors.New("STORAGE_BUCKET environment variable is required")
	}

	publicURL := os.Getenv("STORAGE_PUBLIC_URL")
	if publicURL == "" {
		return nil, errors.New("STORAGE_PUBLIC_URL environment variable is required")
	}

	region := os.Getenv("STORAGE_REGION")
	if region == "" {
		region = "us-east-1"
	}

	maxUpload := int64(25 << 20)
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %q", raw)
		}
		maxUpload = parsed
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		IdentityServiceURL: identityURL,
		IdentityServiceKey: os.Getenv("IDENTITY_SERVICE_KEY"),
		AdminEmail:         adminEmail,
		PaystackSecretKey:  paystackSecret,
		PaystackBaseURL:    paystackBase,
		PaymentCallbackURL: callbackURL,
		SMTPHost:           smtpHost,
		SMTPPort:           smtpPort,
		SMTPUsername:       smtpUsername,
		SMTPPassword:       smtpPassword,
		EmailFrom:          emailFrom,
		StorageBucket:      bucket,
		StorageRegion:      region,
		StorageEndpoint:    os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey:   os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:   os.Getenv("STORAGE_SECRET_KEY"),
		StoragePublicURL:   strings.TrimRight(publicURL, "/"),
		MaxUploadBytes:     maxUpload,
		AllowedOrigins:     origins,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
	}, nil
}
