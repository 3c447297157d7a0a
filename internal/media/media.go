// Package media relays uploaded files into object storage and derives
// resized variants for images.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"swiftincorp.ng/api/internal/logger"
	"swiftincorp.ng/api/models"
)

// ObjectStore uploads a blob under a key and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// S3Store targets any S3-compatible bucket (AWS or a hosted storage
// service exposing the S3 API).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// Relay is the upload pipeline: sanitize, key, store, derive variants.
type Relay struct {
	Store ObjectStore
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client-supplied filename to a safe character
// subset.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "upload"
	}
	return name
}

// ObjectKey builds a collision-resistant storage key: a nanosecond
// timestamp prefix plus the sanitized filename. Variant keys derive from
// this deterministically, which is what lets older records reconstruct
// variant URLs from the original URL alone.
func ObjectKey(filename string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixNano(), SanitizeFilename(filename))
}

// Upload streams the buffer to object storage and, for raster images,
// derives the variant ladder. Variant failures are logged and never fail
// the original upload.
func (r *Relay) Upload(ctx context.Context, filename, contentType string, data []byte) (*models.Media, error) {
	key := ObjectKey(filename, time.Now())

	url, err := r.Store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	result := &models.Media{
		URL:         url,
		ContentType: contentType,
	}

	if !isRasterImage(contentType) {
		return result, nil
	}

	variants, placeholder, err := r.deriveVariants(ctx, key, data)
	if err != nil {
		logger.Warn("variant generation failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return result, nil
	}
	result.Variants = variants
	result.Placeholder = placeholder
	return result, nil
}

func isRasterImage(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}
