package returns

import (
	"context"
	"fmt"
)

// Stats recomputes the dashboard projection from the full set of return
// requests and refund records. It is never the source of truth for any
// invariant.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	reqs, err := s.store.ListReturns(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list return requests: %w", err)
	}
	refunds, err := s.store.ListRefunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund records: %w", err)
	}

	refundByReturn := make(map[string]*RefundRecord, len(refunds))
	for _, r := range refunds {
		refundByReturn[r.ReturnID] = r
	}

	stats := &Stats{}
	var processed int
	var totalProcessingDays float64

	for _, req := range reqs {
		switch req.Status {
		case StatusPending:
			stats.PendingReturns++
		case StatusApproved:
			stats.ApprovedReturns++
		case StatusRefunded, StatusCompleted:
			rec, ok := refundByReturn[req.ID]
			if !ok {
				continue
			}
			stats.TotalRefundCents += rec.RefundAmountCents
			totalProcessingDays += rec.RefundedAt.Sub(req.RequestDate).Hours() / 24
			processed++
		}
	}

	if processed > 0 {
		stats.AvgProcessingDays = totalProcessingDays / float64(processed)
	}
	return stats, nil
}
