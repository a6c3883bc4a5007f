package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/groow-platform/returns-service/internal/db"
	mock_db "github.com/groow-platform/returns-service/internal/db/mocks"
	"github.com/groow-platform/returns-service/internal/repository"
	mock_storage "github.com/groow-platform/returns-service/internal/storage/mocks"
	"github.com/groow-platform/returns-service/internal/returns"
)

type storageMocks struct {
	db         *mock_db.MockDB
	tx         *mock_db.MockTx
	returns    *mock_storage.MockReturnRequestRepository
	inspection *mock_storage.MockInspectionRepository
	refund     *mock_storage.MockRefundRepository
	history    *mock_storage.MockHistoryRepository
	outbox     *mock_storage.MockOutboxTaskRepository
}

func newStorageMocks(t *testing.T) (*PostgresStorage, *storageMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &storageMocks{
		db:         mock_db.NewMockDB(ctrl),
		tx:         mock_db.NewMockTx(ctrl),
		returns:    mock_storage.NewMockReturnRequestRepository(ctrl),
		inspection: mock_storage.NewMockInspectionRepository(ctrl),
		refund:     mock_storage.NewMockRefundRepository(ctrl),
		history:    mock_storage.NewMockHistoryRepository(ctrl),
		outbox:     mock_storage.NewMockOutboxTaskRepository(ctrl),
	}
	stg := NewPostgresStorage(m.db, m.returns, m.inspection, m.refund, m.history, m.outbox)
	return stg, m
}

func pendingReturn() *returns.ReturnRequest {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &returns.ReturnRequest{
		ID:                "return-123",
		RMANumber:         "RMA-2026-AB12CD34",
		OrderNumber:       "ORD-1001",
		CustomerName:      "Jane Doe",
		CustomerEmail:     "jane@example.com",
		SKU:               "WH-100",
		Quantity:          1,
		Condition:         returns.ConditionDefective,
		RefundAmountCents: 100,
		RefundMethod:      returns.RefundOriginalPayment,
		Status:            returns.StatusPending,
		RequestDate:       now,
		Version:           1,
		UpdatedAt:         now,
	}
}

func TestPostgresStorage_CreateReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("writes request and initial history in one transaction", func(t *testing.T) {
		stg, m := newStorageMocks(t)
		req := pendingReturn()

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.returns.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, r *repository.ReturnRequest) error {
				assert.Equal(t, req.ID, r.ID)
				assert.Equal(t, "pending", r.Status)
				assert.Equal(t, int64(1), r.Version)
				return nil
			})
		m.history.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, h *repository.HistoryEntry) error {
				assert.Equal(t, req.ID, h.ReturnID)
				assert.Equal(t, "pending", h.Status)
				return nil
			})
		m.tx.EXPECT().Commit(ctx).Return(nil)

		assert.NoError(t, stg.CreateReturn(ctx, req))
	})

	t.Run("rolls back on repository error", func(t *testing.T) {
		stg, m := newStorageMocks(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.returns.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(errors.New("insert failed"))
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		err := stg.CreateReturn(ctx, pendingReturn())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create return request")
	})
}

func TestPostgresStorage_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("commits update, history and outbox event together", func(t *testing.T) {
		stg, m := newStorageMocks(t)
		req := pendingReturn()
		req.Status = returns.StatusApproved

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.returns.EXPECT().UpdateStatusTx(ctx, m.tx, gomock.Any(), int64(1)).Return(int64(1), nil)
		m.history.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, h *repository.HistoryEntry) error {
				assert.Equal(t, "approved", h.Status)
				assert.Equal(t, "alice", h.ChangedBy)
				return nil
			})
		m.outbox.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, task *repository.OutboxTask) error {
				assert.Equal(t, "rma.status-events", task.Topic)

				var payload repository.StatusEventPayload
				require.NoError(t, json.Unmarshal(task.Payload, &payload))
				assert.Equal(t, req.ID, payload.ReturnID)
				assert.Equal(t, "approved", payload.Status)
				assert.Equal(t, int64(2), payload.Version)
				return nil
			})
		m.tx.EXPECT().Commit(ctx).Return(nil)
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		require.NoError(t, stg.UpdateStatus(ctx, req, 1, "alice"))
		assert.Equal(t, int64(2), req.Version)
	})

	t.Run("zero rows with existing id means stale version", func(t *testing.T) {
		stg, m := newStorageMocks(t)
		req := pendingReturn()

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.returns.EXPECT().UpdateStatusTx(ctx, m.tx, gomock.Any(), int64(1)).Return(int64(0), nil)
		m.returns.EXPECT().GetByID(ctx, req.ID).Return(&repository.ReturnRequest{ID: req.ID}, nil)
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		err := stg.UpdateStatus(ctx, req, 1, "alice")
		assert.ErrorIs(t, err, returns.ErrStaleState)
	})

	t.Run("zero rows with unknown id means not found", func(t *testing.T) {
		stg, m := newStorageMocks(t)
		req := pendingReturn()

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.returns.EXPECT().UpdateStatusTx(ctx, m.tx, gomock.Any(), int64(1)).Return(int64(0), nil)
		m.returns.EXPECT().GetByID(ctx, req.ID).Return(nil, repository.ErrObjectNotFound)
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		err := stg.UpdateStatus(ctx, req, 1, "alice")
		assert.ErrorIs(t, err, returns.ErrNotFound)
	})
}

func TestPostgresStorage_CreateInspection(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate record maps to duplicate inspection", func(t *testing.T) {
		stg, m := newStorageMocks(t)
		req := pendingReturn()
		req.Status = returns.StatusInspected

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.inspection.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(repository.ErrDuplicateEntry)
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		err := stg.CreateInspection(ctx, &returns.InspectionRecord{ReturnID: req.ID}, req, 3)
		assert.ErrorIs(t, err, returns.ErrDuplicateInspection)
	})
}

func TestPostgresStorage_CreateRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate record maps to duplicate refund", func(t *testing.T) {
		stg, m := newStorageMocks(t)
		req := pendingReturn()
		req.Status = returns.StatusRefunded

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.refund.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(repository.ErrDuplicateEntry)
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		err := stg.CreateRefund(ctx, &returns.RefundRecord{ReturnID: req.ID}, req, 4)
		assert.ErrorIs(t, err, returns.ErrDuplicateRefund)
	})
}

func TestPostgresStorage_GetReturn(t *testing.T) {
	ctx := context.Background()
	stg, m := newStorageMocks(t)

	m.returns.EXPECT().GetByID(ctx, "missing").Return(nil, repository.ErrObjectNotFound)

	_, err := stg.GetReturn(ctx, "missing")
	assert.ErrorIs(t, err, returns.ErrNotFound)
}
