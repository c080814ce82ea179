package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orders_service",
			Subsystem: "http",
			Name:      "orders_created_total",
			Help:      "Total number of successfully created orders",
		},
	)

	ordersRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orders_service",
			Subsystem: "http",
			Name:      "orders_rejected_total",
			Help:      "Total number of rejected order creation requests",
		},
	)

	paymentsConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orders_service",
			Subsystem: "kafka_consumer",
			Name:      "payments_confirmed_total",
			Help:      "Total number of applied payment confirmations",
		},
	)

	paymentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orders_service",
			Subsystem: "kafka_consumer",
			Name:      "payments_failed_total",
			Help:      "Total number of failed payment confirmation attempts",
		},
	)

	paymentsDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "orders_service",
			Subsystem: "kafka_consumer",
			Name:      "payments_dlq_total",
			Help:      "Total number of payment confirmations written to DLQ",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		ordersCreated,
		ordersRejected,

		paymentsConfirmed,
		paymentsFailed,
		paymentsDLQ,
	)
}
