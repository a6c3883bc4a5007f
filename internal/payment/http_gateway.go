package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// HTTPGateway talks to the payment collaborator over HTTP. Every call
// carries the idempotency key in the Idempotency-Key header; the gateway is
// responsible for de-duplicating on it.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refund request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/refunds", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build refund request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		// Network-level failures are retryable: the payment collaborator
		// de-duplicates on the idempotency key.
		return nil, &GatewayError{Transient: true, Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result RefundResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode gateway response: %w", err)
		}
		return &result, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &GatewayError{Transient: true, StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	default:
		return nil, &GatewayError{Transient: false, StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil || len(b) == 0 {
		return "no response body"
	}
	return string(b)
}

// IsTransient reports whether the refund call may be retried with the same
// idempotency key.
func IsTransient(err error) bool {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Transient
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
