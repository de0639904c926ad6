// Package storage persists the suggestion log.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Storage defines suggestion log persistence operations.
type Storage interface {
	LogSuggestion(ctx context.Context, record *models.SuggestionRecord) error
	RecentSuggestions(ctx context.Context, limit int) ([]*models.SuggestionRecord, error)
	CountSuggestions(ctx context.Context) (int64, error)

	Close() error
}
