package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReturnsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rma_returns_submitted_total",
		Help: "Total number of return requests submitted.",
	})

	ReturnsApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rma_returns_approved_total",
		Help: "Total number of return requests approved.",
	})

	ReturnsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rma_returns_rejected_total",
		Help: "Total number of return requests rejected.",
	})

	RefundsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rma_refunds_issued_total",
		Help: "Total number of refunds successfully issued.",
	})

	RefundedCentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rma_refunded_cents_total",
		Help: "Total refunded amount in cents.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rma_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	ReturnCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rma_return_cache_items",
		Help: "Current number of open return requests in the cache.",
	})
)
