package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/groow-platform/returns-service/internal/metrics"
	"github.com/groow-platform/returns-service/internal/payment"
)

// RequestCache is a read-through cache of open return requests. It is an
// optimization only: CAS decisions always go to the Store.
type RequestCache interface {
	Get(id string) (*ReturnRequest, bool)
	Set(req *ReturnRequest)
}

const defaultRefundTimeout = 10 * time.Second

// Service owns every return request from submission to a terminal status.
// All transitions go through the compare-and-swap of the Store; the loser of
// a concurrent write observes ErrStaleState and must refetch.
type Service struct {
	store         Store
	gateway       payment.Gateway
	cache         RequestCache
	logger        *zap.Logger
	refundTimeout time.Duration
}

func NewService(store Store, gateway payment.Gateway, c RequestCache, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		gateway:       gateway,
		cache:         c,
		logger:        logger,
		refundTimeout: defaultRefundTimeout,
	}
}

type SubmitRequest struct {
	OrderNumber       string       `json:"order_number"`
	CustomerName      string       `json:"customer_name"`
	CustomerEmail     string       `json:"customer_email"`
	ProductName       string       `json:"product_name"`
	SKU               string       `json:"sku"`
	Quantity          int          `json:"quantity"`
	Reason            string       `json:"reason"`
	Condition         Condition    `json:"condition"`
	RefundAmountCents int64        `json:"refund_amount_cents"`
	RefundMethod      RefundMethod `json:"refund_method"`
	Notes             string       `json:"notes"`
}

func (r SubmitRequest) validate() error {
	if r.OrderNumber == "" || r.CustomerName == "" || r.CustomerEmail == "" || r.SKU == "" {
		return fmt.Errorf("%w: order_number, customer_name, customer_email and sku are required", ErrValidation)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}
	if !r.Condition.Valid() {
		return fmt.Errorf("%w: unknown condition %q", ErrValidation, r.Condition)
	}
	if !r.RefundMethod.Valid() {
		return fmt.Errorf("%w: unknown refund method %q", ErrValidation, r.RefundMethod)
	}
	if r.RefundAmountCents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Submit creates the return request and assigns its RMA number.
func (s *Service) Submit(ctx context.Context, sub SubmitRequest) (*ReturnRequest, error) {
	if err := sub.validate(); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("submit").Inc()
		return nil, err
	}

	now := time.Now().UTC()
	req := &ReturnRequest{
		ID:                uuid.NewString(),
		RMANumber:         newRMANumber(now),
		OrderNumber:       sub.OrderNumber,
		CustomerName:      sub.CustomerName,
		CustomerEmail:     sub.CustomerEmail,
		ProductName:       sub.ProductName,
		SKU:               sub.SKU,
		Quantity:          sub.Quantity,
		Reason:            sub.Reason,
		Condition:         sub.Condition,
		RefundAmountCents: sub.RefundAmountCents,
		RefundMethod:      sub.RefundMethod,
		Status:            StatusPending,
		RequestDate:       now,
		Notes:             sub.Notes,
		Version:           1,
		UpdatedAt:         now,
	}

	if err := s.store.CreateReturn(ctx, req); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("submit").Inc()
		return nil, fmt.Errorf("failed to create return request: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(req)
	}
	metrics.ReturnsSubmittedTotal.Inc()
	s.logger.Info("return request submitted",
		zap.String("return_id", req.ID),
		zap.String("rma_number", req.RMANumber),
		zap.String("order_number", req.OrderNumber))
	return req, nil
}

func newRMANumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RMA-%d-%s", now.Year(), suffix)
}

func (s *Service) Get(ctx context.Context, id string) (*ReturnRequest, error) {
	if s.cache != nil {
		if req, found := s.cache.Get(id); found {
			return req, nil
		}
	}
	req, err := s.store.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(req)
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]*ReturnRequest, error) {
	return s.store.ListReturns(ctx, f)
}

func (s *Service) History(ctx context.Context, id string) ([]*StatusChange, error) {
	if _, err := s.store.GetReturn(ctx, id); err != nil {
		return nil, err
	}
	return s.store.History(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id, approvedBy string, observedVersion int64) (*ReturnRequest, error) {
	req, err := s.transition(ctx, id, StatusApproved, approvedBy, observedVersion)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("approve").Inc()
		return nil, err
	}
	metrics.ReturnsApprovedTotal.Inc()
	return req, nil
}

func (s *Service) Reject(ctx context.Context, id, reason, rejectedBy string, observedVersion int64) (*ReturnRequest, error) {
	if strings.TrimSpace(reason) == "" {
		metrics.OperationErrorsTotal.WithLabelValues("reject").Inc()
		return nil, ErrReasonRequired
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// The reject endpoint is legal from pending only; a received request
	// exits through the inspection-failure path instead.
	if req.Status != StatusPending {
		metrics.OperationErrorsTotal.WithLabelValues("reject").Inc()
		return nil, &InvalidTransitionError{Current: req.Status, Target: StatusRejected}
	}

	req.Status = StatusRejected
	req.Notes = appendNote(req.Notes, "rejected: "+reason)
	if err := s.commit(ctx, req, rejectedBy, observedVersion); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("reject").Inc()
		return nil, err
	}
	metrics.ReturnsRejectedTotal.Inc()
	return req, nil
}

func (s *Service) MarkReceived(ctx context.Context, id, receivedBy string, observedVersion int64) (*ReturnRequest, error) {
	req, err := s.transition(ctx, id, StatusReceived, receivedBy, observedVersion)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("receive").Inc()
	}
	return req, err
}

// Cancel is permitted only while the request is pending or approved; once
// received it can only exit through the inspection path.
func (s *Service) Cancel(ctx context.Context, id, cancelledBy string, observedVersion int64) (*ReturnRequest, error) {
	req, err := s.transition(ctx, id, StatusCancelled, cancelledBy, observedVersion)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("cancel").Inc()
	}
	return req, err
}

// Complete closes a refunded request. The refund record must exist.
func (s *Service) Complete(ctx context.Context, id, completedBy string, observedVersion int64) (*ReturnRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, StatusCompleted) {
		metrics.OperationErrorsTotal.WithLabelValues("complete").Inc()
		return nil, &InvalidTransitionError{Current: req.Status, Target: StatusCompleted}
	}
	if _, err := s.store.GetRefund(ctx, id); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("complete").Inc()
		if err == ErrNotFound {
			return nil, &InvalidTransitionError{Current: req.Status, Target: StatusCompleted}
		}
		return nil, fmt.Errorf("failed to check refund record: %w", err)
	}

	req.Status = StatusCompleted
	if err := s.commit(ctx, req, completedBy, observedVersion); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("complete").Inc()
		return nil, err
	}
	return req, nil
}

func (s *Service) transition(ctx context.Context, id string, target Status, changedBy string, observedVersion int64) (*ReturnRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, target) {
		return nil, &InvalidTransitionError{Current: req.Status, Target: target}
	}

	req.Status = target
	if err := s.commit(ctx, req, changedBy, observedVersion); err != nil {
		return nil, err
	}
	return req, nil
}

// load always reads the authoritative store: CAS decisions must never be
// made against a possibly stale cache entry.
func (s *Service) load(ctx context.Context, id string) (*ReturnRequest, error) {
	return s.store.GetReturn(ctx, id)
}

func (s *Service) commit(ctx context.Context, req *ReturnRequest, changedBy string, observedVersion int64) error {
	expected := observedVersion
	if expected == 0 {
		expected = req.Version
	}
	req.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateStatus(ctx, req, expected, changedBy); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Set(req)
	}
	s.logger.Info("return request transitioned",
		zap.String("return_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.Int64("version", req.Version),
		zap.String("changed_by", changedBy))
	return nil
}

func appendNote(notes, extra string) string {
	if notes == "" {
		return extra
	}
	return notes + "\n" + extra
}
