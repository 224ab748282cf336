package engine

import (
	"context"

	"github.com/nexoft/contacts/internal/cache"
	"go.uber.org/zap"
)

// imageFetcher downloads avatar bytes from an assigned URL.
type imageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// ImageCache lazily materializes avatar bytes for cached contacts. A missing
// avatar is never fatal: fetch failures are logged and the bytes stay absent,
// so a later sync pass retries naturally.
type ImageCache struct {
	fetcher imageFetcher
	log     *zap.Logger
}

// NewImageCache builds an ImageCache over the given fetcher.
func NewImageCache(fetcher imageFetcher, log *zap.Logger) *ImageCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageCache{fetcher: fetcher, log: log}
}

// EnsureCached attaches avatar bytes to the entry when it has a remote URL
// but no bytes yet. At most one fetch attempt is made; the caller persists
// the attached bytes. Returns true when bytes were attached.
func (ic *ImageCache) EnsureCached(ctx context.Context, e *cache.Entry) bool {
	if len(e.Image) > 0 || e.ProfileImageURL == "" {
		return false
	}
	img, err := ic.fetcher.FetchImage(ctx, e.ProfileImageURL)
	if err != nil {
		ic.log.Warn("avatar fetch failed",
			zap.String("id", e.ID), zap.String("url", e.ProfileImageURL), zap.Error(err))
		return false
	}
	if len(img) == 0 {
		return false
	}
	e.Image = img
	return true
}
