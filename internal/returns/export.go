package returns

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// exportColumns is stable across calls; changing order breaks consumers.
var exportColumns = []string{
	"rmaNumber", "orderNumber", "customerName", "customerEmail", "sku",
	"quantity", "condition", "reason", "refundAmount", "refundMethod",
	"status", "requestDate",
}

// Export streams matching return requests as CSV. Rows are written as they
// are read from the store; the full result set is never held in memory.
func (s *Service) Export(ctx context.Context, f Filter, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	err := s.store.StreamReturns(ctx, f, func(req *ReturnRequest) error {
		row := []string{
			req.RMANumber,
			req.OrderNumber,
			req.CustomerName,
			req.CustomerEmail,
			req.SKU,
			strconv.Itoa(req.Quantity),
			string(req.Condition),
			req.Reason,
			formatCents(req.RefundAmountCents),
			string(req.RefundMethod),
			string(req.Status),
			req.RequestDate.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
