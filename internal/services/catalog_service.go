package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/errors"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
)

// CatalogService serves the level/batch directory
type CatalogService interface {
	ListLevels(ctx context.Context) ([]models.LevelSummary, error)
	ListBatches(ctx context.Context, level string) ([]models.BatchSummary, error)
	BatchSentences(ctx context.Context, level string, batch int) ([]models.Sentence, error)
}

type catalogService struct {
	source catalog.Source
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(source catalog.Source) CatalogService {
	return &catalogService{source: source}
}

func (s *catalogService) ListLevels(ctx context.Context) ([]models.LevelSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing levels")

	levels, err := s.source.Levels(ctx)
	if err != nil {
		log.Error("failed to list levels: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if levels == nil {
		levels = []models.LevelSummary{}
	}
	return levels, nil
}

func (s *catalogService) ListBatches(ctx context.Context, level string) ([]models.BatchSummary, error) {
	log := logger.FromContext(ctx)
	group := catalog.GroupForLevel(level)
	log.Debug("listing batches: group=%s", group)

	batches, err := s.source.Batches(ctx, group)
	if err != nil {
		if stderrors.Is(err, catalog.ErrNotFound) {
			return nil, errors.NewNotFoundError("level", group)
		}
		log.Error("failed to list batches: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return batches, nil
}

func (s *catalogService) BatchSentences(ctx context.Context, level string, batch int) ([]models.Sentence, error) {
	log := logger.FromContext(ctx)
	if batch < 1 {
		return nil, errors.NewValidationError("batch", "must be >= 1")
	}
	key := models.BatchKey{Group: catalog.GroupForLevel(level), Batch: batch}
	log.Debug("loading batch: %s", key)

	sentences, err := s.source.BatchSentences(ctx, key.Group, batch)
	if err != nil {
		if stderrors.Is(err, catalog.ErrNotFound) {
			return nil, errors.NewNotFoundError("batch", key)
		}
		log.Error("failed to load batch: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return sentences, nil
}
