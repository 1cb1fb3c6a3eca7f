package repository

import (
	"context"

	"github.com/vytor/hanziflash/internal/catalog"
)

// SentenceRepository serves the imported catalog from the database.
type SentenceRepository interface {
	catalog.Source
	Count(ctx context.Context) (int, error)
}
