package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/groow-platform/returns-service/internal/metrics"
)

type InspectRequest struct {
	ReturnID           string    `json:"return_id"`
	Condition          Condition `json:"condition"`
	Approved           bool      `json:"approved"`
	RefundAmountCents  int64     `json:"refund_amount_cents"`
	RestockingFeeCents int64     `json:"restocking_fee_cents"`
	Notes              string    `json:"notes"`
	InspectedBy        string    `json:"inspected_by"`
	Version            int64     `json:"version"`
}

// Inspect records the physical inspection outcome exactly once. An approved
// inspection advances the request to inspected with the possibly-reduced
// refund amount; a failed one is a valid path to rejected, not an error.
func (s *Service) Inspect(ctx context.Context, in InspectRequest) (*ReturnRequest, error) {
	req, err := s.load(ctx, in.ReturnID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusReceived {
		metrics.OperationErrorsTotal.WithLabelValues("inspect").Inc()
		return nil, &InvalidTransitionError{Current: req.Status, Target: StatusInspected}
	}

	if existing, err := s.store.GetInspection(ctx, in.ReturnID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	} else if existing != nil {
		metrics.OperationErrorsTotal.WithLabelValues("inspect").Inc()
		return nil, ErrDuplicateInspection
	}

	if !in.Condition.Valid() {
		metrics.OperationErrorsTotal.WithLabelValues("inspect").Inc()
		return nil, fmt.Errorf("%w: unknown condition %q", ErrValidation, in.Condition)
	}
	if in.RefundAmountCents < 0 || in.RestockingFeeCents < 0 {
		metrics.OperationErrorsTotal.WithLabelValues("inspect").Inc()
		return nil, ErrInvalidAmount
	}
	if in.RefundAmountCents > req.RefundAmountCents {
		metrics.OperationErrorsTotal.WithLabelValues("inspect").Inc()
		return nil, ErrRefundExceedsLimit
	}

	rec := &InspectionRecord{
		ReturnID:           in.ReturnID,
		Condition:          in.Condition,
		Approved:           in.Approved,
		RefundAmountCents:  in.RefundAmountCents,
		RestockingFeeCents: in.RestockingFeeCents,
		Notes:              in.Notes,
		InspectedBy:        in.InspectedBy,
		InspectedAt:        time.Now().UTC(),
	}

	target := StatusInspected
	if !in.Approved {
		target = StatusRejected
	}

	expected := in.Version
	if expected == 0 {
		expected = req.Version
	}
	req.Status = target
	req.Condition = in.Condition
	req.UpdatedAt = rec.InspectedAt

	if err := s.store.CreateInspection(ctx, rec, req, expected); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("inspect").Inc()
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(req)
	}
	if target == StatusRejected {
		metrics.ReturnsRejectedTotal.Inc()
	}
	s.logger.Info("inspection recorded",
		zap.String("return_id", req.ID),
		zap.Bool("approved", in.Approved),
		zap.Int64("refund_amount_cents", in.RefundAmountCents),
		zap.Int64("restocking_fee_cents", in.RestockingFeeCents),
		zap.String("inspected_by", in.InspectedBy))
	return req, nil
}
