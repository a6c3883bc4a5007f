//go:generate mockgen -source ./postgres.go -destination=./mocks/storage.go -package=mock_storage
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/groow-platform/returns-service/internal/db"
	"github.com/groow-platform/returns-service/internal/repository"
	"github.com/groow-platform/returns-service/internal/returns"
)

const statusEventsTopic = "rma.status-events"

type ReturnRequestRepository interface {
	Create(ctx context.Context, req *repository.ReturnRequest) error
	CreateTx(ctx context.Context, tx db.Tx, req *repository.ReturnRequest) error
	GetByID(ctx context.Context, id string) (*repository.ReturnRequest, error)
	List(ctx context.Context, status string, limit int) ([]*repository.ReturnRequest, error)
	Stream(ctx context.Context, status string, limit int, fn func(*repository.ReturnRequest) error) error
	UpdateStatusTx(ctx context.Context, tx db.Tx, req *repository.ReturnRequest, expectedVersion int64) (int64, error)
}

type InspectionRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, rec *repository.InspectionRecord) error
	GetByReturnID(ctx context.Context, returnID string) (*repository.InspectionRecord, error)
}

type RefundRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, rec *repository.RefundRecord) error
	GetByReturnID(ctx context.Context, returnID string) (*repository.RefundRecord, error)
	List(ctx context.Context) ([]*repository.RefundRecord, error)
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByReturnID(ctx context.Context, returnID string) ([]*repository.HistoryEntry, error)
}

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
	GetProcessableTasks(ctx context.Context, database db.DB, limit int) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, database db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, username, password string) error
	ValidateUser(ctx context.Context, username, password string) (bool, error)
}

// PostgresStorage implements returns.Store. Every transition commits the
// row update, the history entry and the outbox event in one transaction.
type PostgresStorage struct {
	db             db.DB
	returnRepo     ReturnRequestRepository
	inspectionRepo InspectionRepository
	refundRepo     RefundRepository
	historyRepo    HistoryRepository
	outboxRepo     OutboxTaskRepository
}

var _ returns.Store = (*PostgresStorage)(nil)

func NewPostgresStorage(
	database db.DB,
	returnRepo ReturnRequestRepository,
	inspectionRepo InspectionRepository,
	refundRepo RefundRepository,
	historyRepo HistoryRepository,
	outboxRepo OutboxTaskRepository,
) *PostgresStorage {
	return &PostgresStorage{
		db:             database,
		returnRepo:     returnRepo,
		inspectionRepo: inspectionRepo,
		refundRepo:     refundRepo,
		historyRepo:    historyRepo,
		outboxRepo:     outboxRepo,
	}
}

func (s *PostgresStorage) CreateReturn(ctx context.Context, req *returns.ReturnRequest) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.returnRepo.CreateTx(ctx, tx, toRepoReturn(req)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to create return request: %w", err)
	}
	if err := s.historyRepo.CreateTx(ctx, tx, &repository.HistoryEntry{
		ReturnID:  req.ID,
		Status:    string(req.Status),
		ChangedBy: req.CustomerEmail,
		ChangedAt: req.RequestDate,
	}); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to record initial status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetReturn(ctx context.Context, id string) (*returns.ReturnRequest, error) {
	repoReq, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, returns.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return request: %w", err)
	}
	return fromRepoReturn(repoReq), nil
}

func (s *PostgresStorage) ListReturns(ctx context.Context, f returns.Filter) ([]*returns.ReturnRequest, error) {
	repoReqs, err := s.returnRepo.List(ctx, string(f.Status), f.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list return requests: %w", err)
	}
	out := make([]*returns.ReturnRequest, 0, len(repoReqs))
	for _, r := range repoReqs {
		out = append(out, fromRepoReturn(r))
	}
	return out, nil
}

func (s *PostgresStorage) StreamReturns(ctx context.Context, f returns.Filter, fn func(*returns.ReturnRequest) error) error {
	return s.returnRepo.Stream(ctx, string(f.Status), f.Limit, func(r *repository.ReturnRequest) error {
		return fn(fromRepoReturn(r))
	})
}

func (s *PostgresStorage) UpdateStatus(ctx context.Context, req *returns.ReturnRequest, expectedVersion int64, changedBy string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if err := s.commitTransitionTx(ctx, tx, req, expectedVersion, changedBy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// commitTransitionTx performs the CAS update plus history and outbox
// writes. req.Version is bumped only after the update matched a row.
func (s *PostgresStorage) commitTransitionTx(ctx context.Context, tx db.Tx, req *returns.ReturnRequest, expectedVersion int64, changedBy string) error {
	affected, err := s.returnRepo.UpdateStatusTx(ctx, tx, toRepoReturn(req), expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update return request: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.returnRepo.GetByID(ctx, req.ID); errors.Is(getErr, repository.ErrObjectNotFound) {
			return returns.ErrNotFound
		}
		return returns.ErrStaleState
	}
	req.Version = expectedVersion + 1

	changedAt := time.Now().UTC()
	if err := s.historyRepo.CreateTx(ctx, tx, &repository.HistoryEntry{
		ReturnID:  req.ID,
		Status:    string(req.Status),
		ChangedBy: changedBy,
		ChangedAt: changedAt,
	}); err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}

	payload, err := json.Marshal(repository.StatusEventPayload{
		ReturnID:  req.ID,
		RMANumber: req.RMANumber,
		Status:    string(req.Status),
		Version:   req.Version,
		ChangedBy: changedBy,
		ChangedAt: changedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}
	if err := s.outboxRepo.CreateTx(ctx, tx, &repository.OutboxTask{
		Topic:   statusEventsTopic,
		Payload: payload,
	}); err != nil {
		return fmt.Errorf("failed to enqueue status event: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateInspection(ctx context.Context, rec *returns.InspectionRecord, req *returns.ReturnRequest, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if err := s.inspectionRepo.CreateTx(ctx, tx, toRepoInspection(rec)); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return returns.ErrDuplicateInspection
		}
		return fmt.Errorf("failed to create inspection record: %w", err)
	}
	if err := s.commitTransitionTx(ctx, tx, req, expectedVersion, rec.InspectedBy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStorage) GetInspection(ctx context.Context, returnID string) (*returns.InspectionRecord, error) {
	rec, err := s.inspectionRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, returns.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inspection record: %w", err)
	}
	return fromRepoInspection(rec), nil
}

func (s *PostgresStorage) CreateRefund(ctx context.Context, rec *returns.RefundRecord, req *returns.ReturnRequest, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if err := s.refundRepo.CreateTx(ctx, tx, toRepoRefund(rec)); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return returns.ErrDuplicateRefund
		}
		return fmt.Errorf("failed to create refund record: %w", err)
	}
	if err := s.commitTransitionTx(ctx, tx, req, expectedVersion, rec.RefundedBy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStorage) GetRefund(ctx context.Context, returnID string) (*returns.RefundRecord, error) {
	rec, err := s.refundRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, returns.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refund record: %w", err)
	}
	return fromRepoRefund(rec), nil
}

func (s *PostgresStorage) ListRefunds(ctx context.Context) ([]*returns.RefundRecord, error) {
	recs, err := s.refundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund records: %w", err)
	}
	out := make([]*returns.RefundRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRepoRefund(r))
	}
	return out, nil
}

func (s *PostgresStorage) History(ctx context.Context, returnID string) ([]*returns.StatusChange, error) {
	entries, err := s.historyRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	out := make([]*returns.StatusChange, 0, len(entries))
	for _, e := range entries {
		out = append(out, &returns.StatusChange{
			ReturnID:  e.ReturnID,
			Status:    returns.Status(e.Status),
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		})
	}
	return out, nil
}

func toRepoReturn(req *returns.ReturnRequest) *repository.ReturnRequest {
	return &repository.ReturnRequest{
		ID:                req.ID,
		RMANumber:         req.RMANumber,
		OrderNumber:       req.OrderNumber,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		ProductName:       req.ProductName,
		SKU:               req.SKU,
		Quantity:          req.Quantity,
		Reason:            req.Reason,
		Condition:         string(req.Condition),
		RefundAmountCents: req.RefundAmountCents,
		RefundMethod:      string(req.RefundMethod),
		Status:            string(req.Status),
		RequestDate:       req.RequestDate,
		Notes:             req.Notes,
		Version:           req.Version,
		UpdatedAt:         req.UpdatedAt,
	}
}

func fromRepoReturn(r *repository.ReturnRequest) *returns.ReturnRequest {
	return &returns.ReturnRequest{
		ID:                r.ID,
		RMANumber:         r.RMANumber,
		OrderNumber:       r.OrderNumber,
		CustomerName:      r.CustomerName,
		CustomerEmail:     r.CustomerEmail,
		ProductName:       r.ProductName,
		SKU:               r.SKU,
		Quantity:          r.Quantity,
		Reason:            r.Reason,
		Condition:         returns.Condition(r.Condition),
		RefundAmountCents: r.RefundAmountCents,
		RefundMethod:      returns.RefundMethod(r.RefundMethod),
		Status:            returns.Status(r.Status),
		RequestDate:       r.RequestDate,
		Notes:             r.Notes,
		Version:           r.Version,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toRepoInspection(rec *returns.InspectionRecord) *repository.InspectionRecord {
	return &repository.InspectionRecord{
		ReturnID:           rec.ReturnID,
		Condition:          string(rec.Condition),
		Approved:           rec.Approved,
		RefundAmountCents:  rec.RefundAmountCents,
		RestockingFeeCents: rec.RestockingFeeCents,
		Notes:              rec.Notes,
		InspectedBy:        rec.InspectedBy,
		InspectedAt:        rec.InspectedAt,
	}
}

func fromRepoInspection(r *repository.InspectionRecord) *returns.InspectionRecord {
	return &returns.InspectionRecord{
		ReturnID:           r.ReturnID,
		Condition:          returns.Condition(r.Condition),
		Approved:           r.Approved,
		RefundAmountCents:  r.RefundAmountCents,
		RestockingFeeCents: r.RestockingFeeCents,
		Notes:              r.Notes,
		InspectedBy:        r.InspectedBy,
		InspectedAt:        r.InspectedAt,
	}
}

func toRepoRefund(rec *returns.RefundRecord) *repository.RefundRecord {
	return &repository.RefundRecord{
		ReturnID:          rec.ReturnID,
		RefundAmountCents: rec.RefundAmountCents,
		RefundMethod:      string(rec.RefundMethod),
		RefundedBy:        rec.RefundedBy,
		RefundedAt:        rec.RefundedAt,
		IdempotencyKey:    rec.IdempotencyKey,
	}
}

func fromRepoRefund(r *repository.RefundRecord) *returns.RefundRecord {
	return &returns.RefundRecord{
		ReturnID:          r.ReturnID,
		RefundAmountCents: r.RefundAmountCents,
		RefundMethod:      returns.RefundMethod(r.RefundMethod),
		RefundedBy:        r.RefundedBy,
		RefundedAt:        r.RefundedAt,
		IdempotencyKey:    r.IdempotencyKey,
	}
}
