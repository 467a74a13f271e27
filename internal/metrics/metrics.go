// Package metrics держит счётчики prometheus для вебхука, ордеров и уведомлений.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kraken_bot"

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "signals_total", Help: "Webhook signals by outcome"},
		[]string{"outcome"}, // accepted | ignored | malformed
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "orders_total", Help: "Orders submitted to the exchange"},
		[]string{"side", "outcome"}, // outcome: success | <error kind>
	)
	OrderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_duration_seconds",
			Help:      "Exchange order call latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"side"},
	)
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "notifications_total", Help: "Notification attempts"},
		[]string{"outcome"}, // sent | failed | dropped
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, OrdersTotal, OrderDuration, NotificationsTotal)
}
