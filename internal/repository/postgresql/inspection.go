package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/groow-platform/returns-service/internal/db"
	"github.com/groow-platform/returns-service/internal/repository"
	"github.com/groow-platform/returns-service/internal/storage"
)

type InspectionRepo struct {
	db db.DB
}

func NewInspectionRepo(db db.DB) storage.InspectionRepository {
	return &InspectionRepo{db: db}
}

// CreateTx relies on the unique index on return_id to enforce one
// inspection per return.
func (r *InspectionRepo) CreateTx(ctx context.Context, tx db.Tx, rec *repository.InspectionRecord) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO inspections (
            return_id, condition, approved, refund_amount_cents,
            restocking_fee_cents, notes, inspected_by, inspected_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, rec.ReturnID, rec.Condition, rec.Approved, rec.RefundAmountCents,
		rec.RestockingFeeCents, rec.Notes, rec.InspectedBy, rec.InspectedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEntry
	}
	return err
}

func (r *InspectionRepo) GetByReturnID(ctx context.Context, returnID string) (*repository.InspectionRecord, error) {
	var rec repository.InspectionRecord
	err := r.db.Get(ctx, &rec, "SELECT * FROM inspections WHERE return_id = $1", returnID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &rec, nil
}
