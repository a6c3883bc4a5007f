package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_Refund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/refunds", r.URL.Path)
		assert.Equal(t, "RMA-2026-ABCD1234", r.Header.Get("Idempotency-Key"))

		var req RefundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(80), req.AmountCents)

		json.NewEncoder(w).Encode(RefundResult{TransactionID: "tx-1", AmountCents: req.AmountCents})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, time.Second)
	result, err := gw.Refund(context.Background(), RefundRequest{
		IdempotencyKey: "RMA-2026-ABCD1234",
		OrderNumber:    "ORD-1001",
		AmountCents:    80,
		Method:         "original-payment",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-1", result.TransactionID)
	assert.Equal(t, int64(80), result.AmountCents)
}

func TestHTTPGateway_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"server error is transient", http.StatusServiceUnavailable, true},
		{"internal error is transient", http.StatusInternalServerError, true},
		{"rate limit is transient", http.StatusTooManyRequests, true},
		{"bad request is permanent", http.StatusBadRequest, false},
		{"conflict is permanent", http.StatusConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "refund rejected", tt.status)
			}))
			defer srv.Close()

			gw := NewHTTPGateway(srv.URL, time.Second)
			_, err := gw.Refund(context.Background(), RefundRequest{IdempotencyKey: "k"})
			require.Error(t, err)

			var gerr *GatewayError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.status, gerr.StatusCode)
			assert.Equal(t, tt.transient, gerr.Transient)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestHTTPGateway_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, 10*time.Millisecond)
	_, err := gw.Refund(context.Background(), RefundRequest{IdempotencyKey: "k"})
	require.Error(t, err)
	assert.True(t, IsTransient(err), "timeouts must be retryable, got %v", err)
}

func TestHTTPGateway_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	gw := NewHTTPGateway(srv.URL, time.Second)
	_, err := gw.Refund(context.Background(), RefundRequest{IdempotencyKey: "k"})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&GatewayError{Transient: true}))
	assert.False(t, IsTransient(&GatewayError{Transient: false}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("some other error")))
}
