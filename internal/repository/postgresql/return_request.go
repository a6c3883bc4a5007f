package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"

	"github.com/groow-platform/returns-service/internal/db"
	"github.com/groow-platform/returns-service/internal/repository"
	"github.com/groow-platform/returns-service/internal/storage"
)

type ReturnRequestRepo struct {
	db db.DB
}

func NewReturnRequestRepo(db db.DB) storage.ReturnRequestRepository {
	return &ReturnRequestRepo{db: db}
}

func (r *ReturnRequestRepo) Create(ctx context.Context, req *repository.ReturnRequest) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO return_requests (
            id, rma_number, order_number, customer_name, customer_email,
            product_name, sku, quantity, reason, condition,
            refund_amount_cents, refund_method, status, request_date, notes,
            version, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `, req.ID, req.RMANumber, req.OrderNumber, req.CustomerName, req.CustomerEmail,
		req.ProductName, req.SKU, req.Quantity, req.Reason, req.Condition,
		req.RefundAmountCents, req.RefundMethod, req.Status, req.RequestDate, req.Notes,
		req.Version, req.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEntry
	}
	return err
}

func (r *ReturnRequestRepo) CreateTx(ctx context.Context, tx db.Tx, req *repository.ReturnRequest) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO return_requests (
            id, rma_number, order_number, customer_name, customer_email,
            product_name, sku, quantity, reason, condition,
            refund_amount_cents, refund_method, status, request_date, notes,
            version, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `, req.ID, req.RMANumber, req.OrderNumber, req.CustomerName, req.CustomerEmail,
		req.ProductName, req.SKU, req.Quantity, req.Reason, req.Condition,
		req.RefundAmountCents, req.RefundMethod, req.Status, req.RequestDate, req.Notes,
		req.Version, req.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateEntry
	}
	return err
}

func (r *ReturnRequestRepo) GetByID(ctx context.Context, id string) (*repository.ReturnRequest, error) {
	var req repository.ReturnRequest
	err := r.db.Get(ctx, &req, "SELECT * FROM return_requests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *ReturnRequestRepo) List(ctx context.Context, status string, limit int) ([]*repository.ReturnRequest, error) {
	query := "SELECT * FROM return_requests"
	args := []interface{}{}

	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY request_date DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	var reqs []*repository.ReturnRequest
	err := r.db.Select(ctx, &reqs, query, args...)
	return reqs, err
}

// Stream scans rows one at a time so large exports never buffer the full
// result set.
func (r *ReturnRequestRepo) Stream(ctx context.Context, status string, limit int, fn func(*repository.ReturnRequest) error) error {
	query := "SELECT * FROM return_requests"
	args := []interface{}{}

	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY request_date DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query return requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var req repository.ReturnRequest
		if err := pgxscan.ScanRow(&req, rows); err != nil {
			return fmt.Errorf("failed to scan return request row: %w", err)
		}
		if err := fn(&req); err != nil {
			return err
		}
	}
	return rows.Err()
}

// UpdateStatusTx commits the transition under the optimistic version check.
// Zero rows affected means the version was stale (or the id unknown).
func (r *ReturnRequestRepo) UpdateStatusTx(ctx context.Context, tx db.Tx, req *repository.ReturnRequest, expectedVersion int64) (int64, error) {
	tag, err := tx.Exec(ctx, `
        UPDATE return_requests
        SET
            status = $1,
            condition = $2,
            refund_amount_cents = $3,
            notes = $4,
            version = version + 1,
            updated_at = $5
        WHERE id = $6 AND version = $7
    `, req.Status, req.Condition, req.RefundAmountCents, req.Notes, req.UpdatedAt, req.ID, expectedVersion)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
