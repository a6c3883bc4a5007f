package postgresql

import (
	"context"

	"github.com/groow-platform/returns-service/internal/db"
	"github.com/groow-platform/returns-service/internal/repository"
	"github.com/groow-platform/returns-service/internal/storage"
)

type HistoryRepo struct {
	db db.DB
}

func NewHistoryRepo(db db.DB) storage.HistoryRepository {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO return_status_history (
            return_id, status, changed_by, changed_at
        ) VALUES ($1, $2, $3, $4)
    `, entry.ReturnID, entry.Status, entry.ChangedBy, entry.ChangedAt)
	return err
}

func (r *HistoryRepo) GetByReturnID(ctx context.Context, returnID string) ([]*repository.HistoryEntry, error) {
	var entries []*repository.HistoryEntry
	err := r.db.Select(ctx, &entries, `
        SELECT * FROM return_status_history
        WHERE return_id = $1
        ORDER BY changed_at ASC
    `, returnID)
	return entries, err
}
