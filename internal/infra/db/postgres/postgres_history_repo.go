package postgres

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/repository"
)

var _ repository.HistoryRepository = (*historyRepo)(nil)

type historyRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *historyRepo {
	return &historyRepo{pool: pool}
}

func (r *historyRepo) Save(ctx context.Context, tx repository.Tx, entry *model.HistoryEntry) error {
	if entry.ID == "" {
		// ULIDs keep history rows naturally ordered by creation time.
		entry.ID = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO generation_history
  (id, request_id, prompt, model, sampler, seed, width, height, steps,
   worker_id, worker_name, censored, kudos, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (request_id) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q,
		entry.ID, entry.RequestID, entry.Prompt, entry.Model, entry.Sampler,
		entry.Seed, entry.Width, entry.Height, entry.Steps,
		entry.WorkerID, entry.WorkerName, entry.Censored, entry.Kudos, entry.CreatedAt)
	return err
}

func (r *historyRepo) ListRecent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, request_id, prompt, model, sampler, seed, width, height, steps,
       worker_id, worker_name, censored, kudos, created_at
FROM generation_history
ORDER BY created_at DESC
LIMIT $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.Prompt, &e.Model, &e.Sampler, &e.Seed,
			&e.Width, &e.Height, &e.Steps, &e.WorkerID, &e.WorkerName,
			&e.Censored, &e.Kudos, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
