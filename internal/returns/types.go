package returns

import "time"

type Condition string

const (
	ConditionUnopened  Condition = "unopened"
	ConditionOpened    Condition = "opened"
	ConditionDefective Condition = "defective"
	ConditionDamaged   Condition = "damaged"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionUnopened, ConditionOpened, ConditionDefective, ConditionDamaged:
		return true
	}
	return false
}

type RefundMethod string

const (
	RefundOriginalPayment RefundMethod = "original-payment"
	RefundStoreCredit     RefundMethod = "store-credit"
	RefundExchange        RefundMethod = "exchange"
)

func (m RefundMethod) Valid() bool {
	switch m {
	case RefundOriginalPayment, RefundStoreCredit, RefundExchange:
		return true
	}
	return false
}

// ReturnRequest is the aggregate root of the RMA workflow. Version is bumped
// by every committed transition and is the CAS expectation for the next one.
type ReturnRequest struct {
	ID                string       `json:"id"`
	RMANumber         string       `json:"rma_number"`
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
	Status            Status       `json:"status"`
	RequestDate       time.Time    `json:"request_date"`
	Notes             string       `json:"notes"`
	Version           int64        `json:"version"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// InspectionRecord is created exactly once per return request.
type InspectionRecord struct {
	ReturnID           string    `json:"return_id"`
	Condition          Condition `json:"condition"`
	Approved           bool      `json:"approved"`
	RefundAmountCents  int64     `json:"refund_amount_cents"`
	RestockingFeeCents int64     `json:"restocking_fee_cents"`
	Notes              string    `json:"notes"`
	InspectedBy        string    `json:"inspected_by"`
	InspectedAt        time.Time `json:"inspected_at"`
}

// RefundRecord is created at most once per return request. The idempotency
// key handed to the payment gateway is the RMA number.
type RefundRecord struct {
	ReturnID          string       `json:"return_id"`
	RefundAmountCents int64        `json:"refund_amount_cents"`
	RefundMethod      RefundMethod `json:"refund_method"`
	RefundedBy        string       `json:"refunded_by"`
	RefundedAt        time.Time    `json:"refunded_at"`
	IdempotencyKey    string       `json:"idempotency_key"`
}

type StatusChange struct {
	ReturnID  string    `json:"return_id"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// Stats is a read-side projection, recomputable at any time from the store.
type Stats struct {
	PendingReturns    int     `json:"pending_returns"`
	ApprovedReturns   int     `json:"approved_returns"`
	TotalRefundCents  int64   `json:"total_refund_cents"`
	AvgProcessingDays float64 `json:"avg_processing_days"`
}

type Filter struct {
	Status Status
	Limit  int
}
