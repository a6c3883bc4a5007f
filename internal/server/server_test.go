package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/groow-platform/returns-service/internal/returns"
	mock_server "github.com/groow-platform/returns-service/internal/server/mocks"
)

type serverFixture struct {
	service  *mock_server.MockReturnsService
	userRepo *mock_server.MockUserRepo
	handler  http.Handler
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	service := mock_server.NewMockReturnsService(ctrl)
	userRepo := mock_server.NewMockUserRepo(ctrl)

	srv := New(service, userRepo, NewAuditManager(1, 10, time.Second, nil))
	return &serverFixture{
		service:  service,
		userRepo: userRepo,
		handler:  srv.setupRoutes(),
	}
}

func (f *serverFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.SetBasicAuth("admin", "secret")

	f.userRepo.EXPECT().ValidateUser(gomock.Any(), "admin", "secret").Return(true, nil)

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func sampleReturn() *returns.ReturnRequest {
	return &returns.ReturnRequest{
		ID:        "return-123",
		RMANumber: "RMA-2026-AB12CD34",
		Status:    returns.StatusPending,
		Version:   1,
	}
}

func TestHandleSubmitReturn(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newServerFixture(t)

		f.service.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ interface{}, sub returns.SubmitRequest) (*returns.ReturnRequest, error) {
				assert.Equal(t, "ORD-1001", sub.OrderNumber)
				assert.Equal(t, 1, sub.Quantity)
				return sampleReturn(), nil
			})

		w := f.do(t, http.MethodPost, "/returns", map[string]interface{}{
			"order_number":        "ORD-1001",
			"customer_name":       "Jane Doe",
			"customer_email":      "jane@example.com",
			"sku":                 "WH-100",
			"quantity":            1,
			"condition":           "defective",
			"refund_amount_cents": 100,
			"refund_method":       "original-payment",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "RMA-2026-AB12CD34")
	})

	t.Run("validation failure maps to 422", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil, returns.ErrValidation)

		w := f.do(t, http.MethodPost, "/returns", map[string]interface{}{})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandleGetReturn(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().Get(gomock.Any(), "return-123").Return(sampleReturn(), nil)

		w := f.do(t, http.MethodGet, "/returns/return-123", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().Get(gomock.Any(), "missing").Return(nil, returns.ErrNotFound)

		w := f.do(t, http.MethodGet, "/returns/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})
}

func TestHandleListReturns(t *testing.T) {
	t.Run("with status filter", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().List(gomock.Any(), returns.Filter{Status: returns.StatusPending, Limit: 5}).
			Return([]*returns.ReturnRequest{sampleReturn()}, nil)

		w := f.do(t, http.MethodGet, "/returns?status=pending&limit=5", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid status is a bad request", func(t *testing.T) {
		f := newServerFixture(t)

		w := f.do(t, http.MethodGet, "/returns?status=shipped", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().List(gomock.Any(), returns.Filter{}).Return(nil, nil)

		w := f.do(t, http.MethodGet, "/returns", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})
}

func TestHandleApprove_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"stale version", returns.ErrStaleState, http.StatusConflict, "stale_state"},
		{
			"invalid transition carries current status",
			&returns.InvalidTransitionError{Current: returns.StatusRejected, Target: returns.StatusApproved},
			http.StatusConflict,
			`"current_status":"rejected"`,
		},
		{"unknown id", returns.ErrNotFound, http.StatusNotFound, "not_found"},
		{"internal error", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture(t)
			f.service.EXPECT().Approve(gomock.Any(), "return-123", "alice", int64(1)).Return(nil, tt.err)

			w := f.do(t, http.MethodPost, "/returns/return-123/approve", map[string]interface{}{
				"approved_by": "alice",
				"version":     1,
			})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHandleInspect(t *testing.T) {
	f := newServerFixture(t)

	f.service.EXPECT().Inspect(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, in returns.InspectRequest) (*returns.ReturnRequest, error) {
			assert.Equal(t, "return-123", in.ReturnID)
			assert.True(t, in.Approved)
			assert.Equal(t, int64(90), in.RefundAmountCents)
			assert.Equal(t, int64(10), in.RestockingFeeCents)
			out := sampleReturn()
			out.Status = returns.StatusInspected
			return out, nil
		})

	w := f.do(t, http.MethodPost, "/returns/return-123/inspect", map[string]interface{}{
		"condition":            "defective",
		"approved":             true,
		"refund_amount_cents":  90,
		"restocking_fee_cents": 10,
		"inspected_by":         "bob",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inspected")
}

func TestHandleIssueRefund(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().IssueRefund(gomock.Any(), gomock.Any()).Return(&returns.RefundRecord{
			ReturnID:          "return-123",
			RefundAmountCents: 80,
			IdempotencyKey:    "RMA-2026-AB12CD34",
		}, nil)

		w := f.do(t, http.MethodPost, "/returns/refund", map[string]interface{}{
			"return_id":  "return-123",
			"refunded_by": "alice",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "RMA-2026-AB12CD34")
	})

	t.Run("missing return id", func(t *testing.T) {
		f := newServerFixture(t)

		w := f.do(t, http.MethodPost, "/returns/refund", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pending gateway maps to 504", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().IssueRefund(gomock.Any(), gomock.Any()).Return(nil, returns.ErrRefundPending)

		w := f.do(t, http.MethodPost, "/returns/refund", map[string]interface{}{"return_id": "return-123"})
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "refund_pending")
	})

	t.Run("failed gateway maps to 502", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().IssueRefund(gomock.Any(), gomock.Any()).Return(nil, returns.ErrRefundFailed)

		w := f.do(t, http.MethodPost, "/returns/refund", map[string]interface{}{"return_id": "return-123"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("inspection missing maps to 422", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().IssueRefund(gomock.Any(), gomock.Any()).Return(nil, returns.ErrInspectionRequired)

		w := f.do(t, http.MethodPost, "/returns/refund", map[string]interface{}{"return_id": "return-123"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandleStats(t *testing.T) {
	f := newServerFixture(t)
	f.service.EXPECT().Stats(gomock.Any()).Return(&returns.Stats{
		PendingReturns:   2,
		ApprovedReturns:  1,
		TotalRefundCents: 80,
	}, nil)

	w := f.do(t, http.MethodGet, "/returns/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending_returns":2`)
}

func TestHandleExport(t *testing.T) {
	t.Run("streams csv", func(t *testing.T) {
		f := newServerFixture(t)
		f.service.EXPECT().Export(gomock.Any(), returns.Filter{}, gomock.Any()).DoAndReturn(
			func(_ interface{}, _ returns.Filter, w interface{ Write([]byte) (int, error) }) error {
				_, err := w.Write([]byte("rmaNumber,orderNumber\n"))
				return err
			})

		w := f.do(t, http.MethodGet, "/returns/export", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "rmaNumber")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		f := newServerFixture(t)

		w := f.do(t, http.MethodGet, "/returns/export?format=xlsx", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleHistory(t *testing.T) {
	f := newServerFixture(t)
	f.service.EXPECT().History(gomock.Any(), "return-123").Return([]*returns.StatusChange{
		{ReturnID: "return-123", Status: returns.StatusPending},
		{ReturnID: "return-123", Status: returns.StatusApproved},
	}, nil)

	w := f.do(t, http.MethodGet, "/returns/return-123/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "approved")
}

func TestBasicAuth(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		f := newServerFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/returns", nil)
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newServerFixture(t)
		f.userRepo.EXPECT().ValidateUser(gomock.Any(), "admin", "wrong").Return(false, nil)

		req := httptest.NewRequest(http.MethodGet, "/returns", nil)
		req.SetBasicAuth("admin", "wrong")
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("metrics endpoint is open", func(t *testing.T) {
		f := newServerFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
