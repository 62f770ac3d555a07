package usecase

import (
	"context"

	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/repository"
)

var _ HistoryUseCase = (*historyUC)(nil)

type HistoryUseCase interface {
	ListRecent(ctx context.Context, limit int) ([]model.HistoryEntry, error)
}

type historyUC struct {
	repo repository.HistoryRepository
}

func NewHistoryUseCase(repo repository.HistoryRepository) *historyUC {
	return &historyUC{repo: repo}
}

func (u *historyUC) ListRecent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.repo.ListRecent(ctx, limit)
}
