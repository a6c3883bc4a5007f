package returns_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/groow-platform/returns-service/internal/payment"
	"github.com/groow-platform/returns-service/internal/returns"
	"github.com/groow-platform/returns-service/internal/storage"
)

type fakeGateway struct {
	calls    int
	err      error
	requests []payment.RefundRequest
}

func (g *fakeGateway) Refund(_ context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	g.calls++
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.RefundResult{TransactionID: "tx-" + req.IdempotencyKey, AmountCents: req.AmountCents}, nil
}

func newTestService(t *testing.T) (*returns.Service, *fakeGateway) {
	t.Helper()
	store, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "returns.json"))
	require.NoError(t, err)

	gateway := &fakeGateway{}
	return returns.NewService(store, gateway, nil, zap.NewNop()), gateway
}

func validSubmit() returns.SubmitRequest {
	return returns.SubmitRequest{
		OrderNumber:       "ORD-1001",
		CustomerName:      "Jane Doe",
		CustomerEmail:     "jane@example.com",
		ProductName:       "Wireless Headphones",
		SKU:               "WH-100",
		Quantity:          1,
		Reason:            "defective",
		Condition:         returns.ConditionDamaged,
		RefundAmountCents: 100,
		RefundMethod:      returns.RefundOriginalPayment,
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.True(t, strings.HasPrefix(req.RMANumber, "RMA-"), "got %s", req.RMANumber)
	assert.Equal(t, returns.StatusPending, req.Status)
	assert.Equal(t, int64(1), req.Version)
	assert.False(t, req.RequestDate.IsZero())

	got, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.RMANumber, got.RMANumber)
}

func TestSubmit_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*returns.SubmitRequest)
		want   error
	}{
		{"missing order number", func(s *returns.SubmitRequest) { s.OrderNumber = "" }, returns.ErrValidation},
		{"zero quantity", func(s *returns.SubmitRequest) { s.Quantity = 0 }, returns.ErrValidation},
		{"unknown condition", func(s *returns.SubmitRequest) { s.Condition = "pristine" }, returns.ErrValidation},
		{"unknown refund method", func(s *returns.SubmitRequest) { s.RefundMethod = "cash" }, returns.ErrValidation},
		{"non-positive amount", func(s *returns.SubmitRequest) { s.RefundAmountCents = 0 }, returns.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmit()
			tt.mutate(&sub)
			_, err := svc.Submit(ctx, sub)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, gateway := newTestService(t)

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	req, err = svc.Approve(ctx, req.ID, "alice", req.Version)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusApproved, req.Status)
	assert.Equal(t, int64(2), req.Version)

	req, err = svc.MarkReceived(ctx, req.ID, "warehouse", req.Version)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusReceived, req.Status)

	// Inspection grants 90 of the requested 100 cents with a 10 cent
	// restocking fee, so the refund nets 80.
	req, err = svc.Inspect(ctx, returns.InspectRequest{
		ReturnID:           req.ID,
		Condition:          returns.ConditionDamaged,
		Approved:           true,
		RefundAmountCents:  90,
		RestockingFeeCents: 10,
		InspectedBy:        "bob",
		Version:            req.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, returns.StatusInspected, req.Status)

	rec, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{
		ReturnID:   req.ID,
		RefundedBy: "alice",
		Version:    req.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(80), rec.RefundAmountCents)
	assert.Equal(t, req.RMANumber, rec.IdempotencyKey)
	require.Len(t, gateway.requests, 1)
	assert.Equal(t, int64(80), gateway.requests[0].AmountCents)

	req, err = svc.Get(ctx, req.ID)
	require.NoError(t, err)

	req, err = svc.Complete(ctx, req.ID, "alice", req.Version)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusCompleted, req.Status)

	history, err := svc.History(ctx, req.ID)
	require.NoError(t, err)
	// pending, approved, received, inspected, refunded, completed
	require.Len(t, history, 6)
	assert.Equal(t, returns.StatusPending, history[0].Status)
	assert.Equal(t, returns.StatusCompleted, history[5].Status)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	t.Run("reason required", func(t *testing.T) {
		_, err := svc.Reject(ctx, req.ID, "  ", "alice", 0)
		assert.ErrorIs(t, err, returns.ErrReasonRequired)
	})

	t.Run("rejects pending with note", func(t *testing.T) {
		rejected, err := svc.Reject(ctx, req.ID, "outside return window", "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, returns.StatusRejected, rejected.Status)
		assert.Contains(t, rejected.Notes, "rejected: outside return window")
	})

	t.Run("cannot reject approved request", func(t *testing.T) {
		other, err := svc.Submit(ctx, validSubmit())
		require.NoError(t, err)
		other, err = svc.Approve(ctx, other.ID, "alice", 0)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, other.ID, "too late", "alice", 0)
		assert.ErrorIs(t, err, returns.ErrInvalidTransition)

		var invErr *returns.InvalidTransitionError
		require.ErrorAs(t, err, &invErr)
		assert.Equal(t, returns.StatusApproved, invErr.Current)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	req, err = svc.Approve(ctx, req.ID, "alice", 0)
	require.NoError(t, err)

	t.Run("approved request can be cancelled", func(t *testing.T) {
		cancelled, err := svc.Cancel(ctx, req.ID, "customer", 0)
		require.NoError(t, err)
		assert.Equal(t, returns.StatusCancelled, cancelled.Status)
	})

	t.Run("received request cannot be cancelled", func(t *testing.T) {
		other, err := svc.Submit(ctx, validSubmit())
		require.NoError(t, err)
		_, err = svc.Approve(ctx, other.ID, "alice", 0)
		require.NoError(t, err)
		_, err = svc.MarkReceived(ctx, other.ID, "warehouse", 0)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, other.ID, "customer", 0)
		assert.ErrorIs(t, err, returns.ErrInvalidTransition)
	})
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	receive := func(t *testing.T) *returns.ReturnRequest {
		t.Helper()
		req, err := svc.Submit(ctx, validSubmit())
		require.NoError(t, err)
		_, err = svc.Approve(ctx, req.ID, "alice", 0)
		require.NoError(t, err)
		req, err = svc.MarkReceived(ctx, req.ID, "warehouse", 0)
		require.NoError(t, err)
		return req
	}

	t.Run("failed inspection routes to rejected", func(t *testing.T) {
		req := receive(t)
		req, err := svc.Inspect(ctx, returns.InspectRequest{
			ReturnID:    req.ID,
			Condition:   returns.ConditionDamaged,
			Approved:    false,
			Notes:       "item does not match SKU",
			InspectedBy: "bob",
		})
		require.NoError(t, err)
		assert.Equal(t, returns.StatusRejected, req.Status)
	})

	t.Run("second inspection is rejected", func(t *testing.T) {
		req := receive(t)
		_, err := svc.Inspect(ctx, returns.InspectRequest{
			ReturnID:          req.ID,
			Condition:         returns.ConditionDamaged,
			Approved:          true,
			RefundAmountCents: 50,
			InspectedBy:       "bob",
		})
		require.NoError(t, err)

		_, err = svc.Inspect(ctx, returns.InspectRequest{
			ReturnID:          req.ID,
			Condition:         returns.ConditionDamaged,
			Approved:          true,
			RefundAmountCents: 50,
			InspectedBy:       "bob",
		})
		assert.ErrorIs(t, err, returns.ErrDuplicateInspection)
	})

	t.Run("amount above requested refund is rejected", func(t *testing.T) {
		req := receive(t)
		_, err := svc.Inspect(ctx, returns.InspectRequest{
			ReturnID:          req.ID,
			Condition:         returns.ConditionDamaged,
			Approved:          true,
			RefundAmountCents: 150,
			InspectedBy:       "bob",
		})
		assert.ErrorIs(t, err, returns.ErrRefundExceedsLimit)
	})

	t.Run("negative fee is rejected", func(t *testing.T) {
		req := receive(t)
		_, err := svc.Inspect(ctx, returns.InspectRequest{
			ReturnID:           req.ID,
			Condition:          returns.ConditionDamaged,
			Approved:           true,
			RefundAmountCents:  50,
			RestockingFeeCents: -1,
			InspectedBy:        "bob",
		})
		assert.ErrorIs(t, err, returns.ErrInvalidAmount)
	})

	t.Run("pending request cannot be inspected", func(t *testing.T) {
		req, err := svc.Submit(ctx, validSubmit())
		require.NoError(t, err)
		_, err = svc.Inspect(ctx, returns.InspectRequest{
			ReturnID:  req.ID,
			Condition: returns.ConditionDamaged,
			Approved:  true,
		})
		assert.ErrorIs(t, err, returns.ErrInvalidTransition)
	})
}

func inspected(t *testing.T, svc *returns.Service, refundCents, feeCents int64) *returns.ReturnRequest {
	t.Helper()
	ctx := context.Background()

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, req.ID, "alice", 0)
	require.NoError(t, err)
	_, err = svc.MarkReceived(ctx, req.ID, "warehouse", 0)
	require.NoError(t, err)
	req, err = svc.Inspect(ctx, returns.InspectRequest{
		ReturnID:           req.ID,
		Condition:          returns.ConditionDamaged,
		Approved:           true,
		RefundAmountCents:  refundCents,
		RestockingFeeCents: feeCents,
		InspectedBy:        "bob",
	})
	require.NoError(t, err)
	return req
}

func TestIssueRefund_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, gateway := newTestService(t)
	req := inspected(t, svc, 90, 10)

	first, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID, RefundedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(80), first.RefundAmountCents)
	assert.Equal(t, 1, gateway.calls)

	// Replay: same record back, gateway untouched.
	second, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID, RefundedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, first.IdempotencyKey, second.IdempotencyKey)
	assert.Equal(t, first.RefundAmountCents, second.RefundAmountCents)
	assert.Equal(t, 1, gateway.calls)
}

func TestIssueRefund_TransientFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	svc, gateway := newTestService(t)
	req := inspected(t, svc, 100, 0)

	gateway.err = &payment.GatewayError{Transient: true, StatusCode: 503, Message: "upstream unavailable"}

	_, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID, RefundedBy: "alice"})
	assert.ErrorIs(t, err, returns.ErrRefundPending)

	// No record written and the request still awaits its refund.
	got, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusInspected, got.Status)

	// Retry after the gateway recovers succeeds with the same key.
	gateway.err = nil
	rec, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID, RefundedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, req.RMANumber, rec.IdempotencyKey)
	assert.Equal(t, 2, gateway.calls)
}

func TestIssueRefund_PermanentFailure(t *testing.T) {
	ctx := context.Background()
	svc, gateway := newTestService(t)
	req := inspected(t, svc, 100, 0)

	gateway.err = &payment.GatewayError{Transient: false, StatusCode: 400, Message: "account closed"}

	_, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID, RefundedBy: "alice"})
	assert.ErrorIs(t, err, returns.ErrRefundFailed)

	got, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusInspected, got.Status)
}

func TestIssueRefund_Guards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("unknown return", func(t *testing.T) {
		_, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: "nope"})
		assert.ErrorIs(t, err, returns.ErrNotFound)
	})

	t.Run("not yet inspected", func(t *testing.T) {
		req, err := svc.Submit(ctx, validSubmit())
		require.NoError(t, err)
		_, err = svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID})
		assert.ErrorIs(t, err, returns.ErrInvalidTransition)
	})

	t.Run("requested amount above inspection grant", func(t *testing.T) {
		req := inspected(t, svc, 90, 10)
		_, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{
			ReturnID:          req.ID,
			RefundAmountCents: 81,
		})
		assert.ErrorIs(t, err, returns.ErrRefundExceedsLimit)
	})
}

func TestComplete_RequiresRefund(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	_, err = svc.Complete(ctx, req.ID, "alice", 0)
	assert.ErrorIs(t, err, returns.ErrInvalidTransition)
}

func TestStaleVersionLosesRace(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	// Two operators loaded version 1. The first approval wins, the second
	// write must observe the conflict instead of silently overwriting.
	_, err = svc.Approve(ctx, req.ID, "alice", 1)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, req.ID, "bob", 1)
	require.Error(t, err)
	assert.True(t,
		errors.Is(err, returns.ErrStaleState) || errors.Is(err, returns.ErrInvalidTransition),
		"expected stale state or invalid transition, got %v", err)

	got, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.StatusApproved, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	second, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, second.ID, "alice", 0)
	require.NoError(t, err)

	third := inspected(t, svc, 90, 10)
	_, err = svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: third.ID, RefundedBy: "alice"})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingReturns)
	assert.Equal(t, 1, stats.ApprovedReturns)
	assert.Equal(t, int64(80), stats.TotalRefundCents)
	assert.GreaterOrEqual(t, stats.AvgProcessingDays, 0.0)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req := inspected(t, svc, 90, 10)
	_, err := svc.IssueRefund(ctx, returns.IssueRefundRequest{ReturnID: req.ID, RefundedBy: "alice"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, returns.Filter{}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "rmaNumber,orderNumber,"), "got header %q", lines[0])
	assert.Contains(t, lines[1], req.RMANumber)
	assert.Contains(t, lines[1], "ORD-1001")
	assert.Contains(t, lines[1], "0.80")
	assert.Contains(t, lines[1], "refunded")
}

func TestExport_StatusFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	approvedReq, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, approvedReq.ID, "alice", 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, returns.Filter{Status: returns.StatusApproved}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], approvedReq.RMANumber)
}
