package payment

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Gateway issues the monetary refund. Implementations must de-duplicate on
// the idempotency key so a retried call has only one effect.
type Gateway interface {
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

type RefundRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	OrderNumber    string `json:"order_number"`
	AmountCents    int64  `json:"amount_cents"`
	Method         string `json:"method"`
}

type RefundResult struct {
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// GatewayError classifies a refund failure. Transient failures (timeouts,
// 5xx) are safe to retry with the same idempotency key; permanent ones
// (invalid card or account) require manual resolution.
type GatewayError struct {
	Transient  bool
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("payment gateway %s failure (status %d): %s", kind, e.StatusCode, e.Message)
}

// ConsoleGateway approves every refund and prints it. Used for local runs
// when no gateway URL is configured.
type ConsoleGateway struct{}

func NewConsoleGateway() Gateway {
	log.Println("Initialized Console Payment Gateway (Placeholder)")
	return &ConsoleGateway{}
}

func (g *ConsoleGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	select {
	case <-time.After(50 * time.Millisecond):
		fmt.Printf("\n--- PAYMENT_GATEWAY (CONSOLE) ---\n")
		fmt.Printf("Idempotency-Key: %s\n", req.IdempotencyKey)
		fmt.Printf("Order: %s, Amount: %d cents, Method: %s\n", req.OrderNumber, req.AmountCents, req.Method)
		fmt.Printf("--- END GATEWAY ---\n")
		return &RefundResult{TransactionID: "console-" + req.IdempotencyKey, AmountCents: req.AmountCents}, nil
	case <-ctx.Done():
		return nil, &GatewayError{Transient: true, Message: ctx.Err().Error()}
	}
}
