package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"

	"swiftincorp.ng/api/internal/logger"
	"swiftincorp.ng/api/models"
)

// VariantWidths is the fixed derivative ladder.
var VariantWidths = []int{320, 640, 1280}

const (
	variantQuality = 80
	lqipWidth      = 24
	lqipQuality    = 40
)

// deriveVariants produces the resized JPEG/WebP ladder plus the inline
// placeholder. Individual variant failures are logged and skipped; the
// ladder is best effort.
func (r *Relay) deriveVariants(ctx context.Context, originalKey string, data []byte) ([]models.MediaVariant, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	var variants []models.MediaVariant
	for _, width := range VariantWidths {
		variant, err := r.uploadVariant(ctx, originalKey, img, width)
		if err != nil {
			logger.Warn("variant upload failed", map[string]interface{}{
				"key":   originalKey,
				"width": width,
				"error": err.Error(),
			})
			continue
		}
		variants = append(variants, *variant)
	}

	placeholder, err := Placeholder(img)
	if err != nil {
		logger.Warn("placeholder generation failed", map[string]interface{}{
			"key":   originalKey,
			"error": err.Error(),
		})
		placeholder = ""
	}

	return variants, placeholder, nil
}

func (r *Relay) uploadVariant(ctx context.Context, originalKey string, img image.Image, width int) (*models.MediaVariant, error) {
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var jpegBuf bytes.Buffer
	if err := imaging.Encode(&jpegBuf, resized, imaging.JPEG, imaging.JPEGQuality(variantQuality)); err != nil {
		return nil, err
	}
	jpegURL, err := r.Store.Put(ctx, VariantKey(originalKey, width, "jpg"), "image/jpeg", &jpegBuf)
	if err != nil {
		return nil, err
	}

	var webpBuf bytes.Buffer
	if err := nativewebp.Encode(&webpBuf, resized, nil); err != nil {
		return nil, err
	}
	webpURL, err := r.Store.Put(ctx, VariantKey(originalKey, width, "webp"), "image/webp", &webpBuf)
	if err != nil {
		return nil, err
	}

	return &models.MediaVariant{
		Width:   width,
		JPEGURL: jpegURL,
		WebPURL: webpURL,
	}, nil
}

// Placeholder encodes a tiny JPEG preview as an inline data URI for
// progressive loading.
func Placeholder(img image.Image) (string, error) {
	tiny := imaging.Resize(img, lqipWidth, 0, imaging.Box)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, tiny, imaging.JPEG, imaging.JPEGQuality(lqipQuality)); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// VariantKey derives the storage key for one rendition. The width suffix
// sits before the extension so keys stay reconstructable from the
// original: "169-logo.png" -> "169-logo_w640.webp".
func VariantKey(originalKey string, width int, ext string) string {
	base := originalKey
	if idx := strings.LastIndex(originalKey, "."); idx > strings.LastIndex(originalKey, "/") {
		base = originalKey[:idx]
	}
	return fmt.Sprintf("%s_w%d.%s", base, width, ext)
}

// VariantURLsFromOriginal reconstructs the variant ladder for records
// stored before variant metadata was persisted. Legacy-migration fallback
// only; new uploads carry explicit variant URLs.
func VariantURLsFromOriginal(originalURL string) []models.MediaVariant {
	variants := make([]models.MediaVariant, 0, len(VariantWidths))
	for _, width := range VariantWidths {
		variants = append(variants, models.MediaVariant{
			Width:   width,
			JPEGURL: VariantKey(originalURL, width, "jpg"),
			WebPURL: VariantKey(originalURL, width, "webp"),
		})
	}
	return variants
}
