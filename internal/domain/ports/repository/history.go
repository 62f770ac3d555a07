package repository

import (
	"context"

	"horde-image-client/internal/domain/model"
)

// HistoryRepository records completed generations.
type HistoryRepository interface {
	Save(ctx context.Context, tx Tx, entry *model.HistoryEntry) error
	ListRecent(ctx context.Context, limit int) ([]model.HistoryEntry, error)
}
