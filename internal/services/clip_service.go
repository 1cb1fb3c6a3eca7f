package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/errors"
	"github.com/vytor/hanziflash/internal/logger"
)

// ClipService hands out clip bytes through the shared clip cache
type ClipService interface {
	Clip(ctx context.Context, key string) (*audio.Clip, error)
	Stats() audio.CacheStats
}

type clipService struct {
	cache *audio.ClipCache
}

// NewClipService creates a new ClipService
func NewClipService(cache *audio.ClipCache) ClipService {
	return &clipService{cache: cache}
}

func (s *clipService) Clip(ctx context.Context, key string) (*audio.Clip, error) {
	log := logger.FromContext(ctx)
	if _, err := audio.ParseKey(key); err != nil {
		return nil, errors.NewValidationError("key", err.Error())
	}

	clip, err := s.cache.Fetch(ctx, audio.ClipKey(key))
	if err != nil {
		if stderrors.Is(err, audio.ErrClipMissing) {
			return nil, errors.NewNotFoundError("clip", key)
		}
		log.Error("failed to resolve clip: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return clip, nil
}

func (s *clipService) Stats() audio.CacheStats {
	return s.cache.Stats()
}
