package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/hanziflash/internal/models"
)

// MockSentenceRepository is a mock implementation of repository.SentenceRepository
type MockSentenceRepository struct {
	mock.Mock
}

func (m *MockSentenceRepository) Levels(ctx context.Context) ([]models.LevelSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LevelSummary), args.Error(1)
}

func (m *MockSentenceRepository) Batches(ctx context.Context, group string) ([]models.BatchSummary, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BatchSummary), args.Error(1)
}

func (m *MockSentenceRepository) BatchSentences(ctx context.Context, group string, batch int) ([]models.Sentence, error) {
	args := m.Called(ctx, group, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sentence), args.Error(1)
}

func (m *MockSentenceRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
