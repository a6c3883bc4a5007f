package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/groow-platform/returns-service/internal/metrics"
	"github.com/groow-platform/returns-service/internal/payment"
)

type IssueRefundRequest struct {
	ReturnID          string       `json:"return_id"`
	RefundAmountCents int64        `json:"refund_amount_cents"`
	RefundMethod      RefundMethod `json:"refund_method"`
	RefundedBy        string       `json:"refunded_by"`
	Version           int64        `json:"version"`
}

// IssueRefund issues the monetary refund at most once. A call for an already
// refunded return is an idempotent replay: the existing record is returned
// without touching the payment gateway. A transient gateway failure surfaces
// ErrRefundPending with no RefundRecord written and no status change, so the
// caller may retry with the same idempotency key.
func (s *Service) IssueRefund(ctx context.Context, in IssueRefundRequest) (*RefundRecord, error) {
	existing, err := s.store.GetRefund(ctx, in.ReturnID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("refund replayed", zap.String("return_id", in.ReturnID))
		return existing, nil
	}

	req, err := s.load(ctx, in.ReturnID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusInspected {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		return nil, &InvalidTransitionError{Current: req.Status, Target: StatusRefunded}
	}

	insp, err := s.store.GetInspection(ctx, in.ReturnID)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInspectionRequired
		}
		return nil, err
	}
	if !insp.Approved {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		return nil, &InvalidTransitionError{Current: req.Status, Target: StatusRefunded}
	}

	amount := insp.RefundAmountCents - insp.RestockingFeeCents
	if amount < 0 {
		amount = 0
	}
	if in.RefundAmountCents > 0 && in.RefundAmountCents > amount {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		return nil, ErrRefundExceedsLimit
	}

	method := in.RefundMethod
	if method == "" {
		method = req.RefundMethod
	}
	if !method.Valid() {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		return nil, fmt.Errorf("%w: unknown refund method %q", ErrValidation, method)
	}

	gctx, cancel := context.WithTimeout(ctx, s.refundTimeout)
	defer cancel()

	result, err := s.gateway.Refund(gctx, payment.RefundRequest{
		IdempotencyKey: req.RMANumber,
		OrderNumber:    req.OrderNumber,
		AmountCents:    amount,
		Method:         string(method),
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		if payment.IsTransient(err) {
			s.logger.Warn("payment gateway unavailable, refund left pending",
				zap.String("return_id", in.ReturnID),
				zap.String("idempotency_key", req.RMANumber),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrRefundPending, err)
		}
		s.logger.Error("payment gateway rejected refund",
			zap.String("return_id", in.ReturnID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	rec := &RefundRecord{
		ReturnID:          in.ReturnID,
		RefundAmountCents: amount,
		RefundMethod:      method,
		RefundedBy:        in.RefundedBy,
		RefundedAt:        time.Now().UTC(),
		IdempotencyKey:    req.RMANumber,
	}

	expected := in.Version
	if expected == 0 {
		expected = req.Version
	}
	req.Status = StatusRefunded
	req.RefundAmountCents = amount
	req.UpdatedAt = rec.RefundedAt

	if err := s.store.CreateRefund(ctx, rec, req, expected); err != nil {
		if errors.Is(err, ErrDuplicateRefund) {
			// Lost a race against a concurrent issuer; the gateway
			// de-duplicated on the idempotency key, so report theirs.
			return s.store.GetRefund(ctx, in.ReturnID)
		}
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(req)
	}
	metrics.RefundsIssuedTotal.Inc()
	metrics.RefundedCentsTotal.Add(float64(amount))
	s.logger.Info("refund issued",
		zap.String("return_id", req.ID),
		zap.String("idempotency_key", rec.IdempotencyKey),
		zap.String("transaction_id", result.TransactionID),
		zap.Int64("amount_cents", amount))
	return rec, nil
}
