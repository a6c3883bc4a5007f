package repository

import (
	"errors"
	"time"
)

var (
	ErrObjectNotFound = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

type ReturnRequest struct {
	ID                string    `db:"id"`
	RMANumber         string    `db:"rma_number"`
	OrderNumber       string    `db:"order_number"`
	CustomerName      string    `db:"customer_name"`
	CustomerEmail     string    `db:"customer_email"`
	ProductName       string    `db:"product_name"`
	SKU               string    `db:"sku"`
	Quantity          int       `db:"quantity"`
	Reason            string    `db:"reason"`
	Condition         string    `db:"condition"`
	RefundAmountCents int64     `db:"refund_amount_cents"`
	RefundMethod      string    `db:"refund_method"`
	Status            string    `db:"status"`
	RequestDate       time.Time `db:"request_date"`
	Notes             string    `db:"notes"`
	Version           int64     `db:"version"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type InspectionRecord struct {
	ID                 int64     `db:"id"`
	ReturnID           string    `db:"return_id"`
	Condition          string    `db:"condition"`
	Approved           bool      `db:"approved"`
	RefundAmountCents  int64     `db:"refund_amount_cents"`
	RestockingFeeCents int64     `db:"restocking_fee_cents"`
	Notes              string    `db:"notes"`
	InspectedBy        string    `db:"inspected_by"`
	InspectedAt        time.Time `db:"inspected_at"`
}

type RefundRecord struct {
	ID                int64     `db:"id"`
	ReturnID          string    `db:"return_id"`
	RefundAmountCents int64     `db:"refund_amount_cents"`
	RefundMethod      string    `db:"refund_method"`
	RefundedBy        string    `db:"refunded_by"`
	RefundedAt        time.Time `db:"refunded_at"`
	IdempotencyKey    string    `db:"idempotency_key"`
}

type HistoryEntry struct {
	ID        int64     `db:"id"`
	ReturnID  string    `db:"return_id"`
	Status    string    `db:"status"`
	ChangedBy string    `db:"changed_by"`
	ChangedAt time.Time `db:"changed_at"`
}
