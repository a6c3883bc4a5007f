package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/groow-platform/returns-service/internal/db"
	"github.com/groow-platform/returns-service/internal/repository"
	"github.com/groow-platform/returns-service/internal/storage"
)

type RefundRepo struct {
	db db.DB
}

func NewRefundRepo(db db.DB) storage.RefundRepository {
	return &RefundRepo{db: db}
}

// CreateTx relies on the unique index on return_id: at most one refund
// record per return, even under concurrent issuers.
func (r *RefundRepo) CreateTx(ctx context.Context, tx db.Tx, rec *repository.RefundRecord) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO refunds (
            return_id, refund_amount_cents, refund_method,
            refunded_by, refunded_at, idempotency_key
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `, rec.ReturnID, rec.RefundAmountCents, rec.RefundMethod,
		rec.RefundedBy, rec.RefundedAt, rec.IdempotencyKey)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEntry
	}
	return err
}

func (r *RefundRepo) GetByReturnID(ctx context.Context, returnID string) (*repository.RefundRecord, error) {
	var rec repository.RefundRecord
	err := r.db.Get(ctx, &rec, "SELECT * FROM refunds WHERE return_id = $1", returnID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RefundRepo) List(ctx context.Context) ([]*repository.RefundRecord, error) {
	var recs []*repository.RefundRecord
	err := r.db.Select(ctx, &recs, "SELECT * FROM refunds ORDER BY refunded_at ASC")
	return recs, err
}
