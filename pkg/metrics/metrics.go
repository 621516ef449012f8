package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Checkout attempts by outcome: placed, partial, none, failed, empty, duplicate
	CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agro_checkout_total",
		Help: "Checkout attempts by outcome",
	}, []string{"outcome"})

	// Cart lines processed by checkout, labelled applied / shortage / vanished
	CheckoutLines = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agro_checkout_lines_total",
		Help: "Cart lines processed by checkout",
	}, []string{"result"})

	CheckoutDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "agro_checkout_duration_seconds",
		Help:    "Latency of the checkout transaction",
		Buckets: prometheus.DefBuckets,
	})

	OrderEventsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agro_order_events_failed_total",
		Help: "Order placed events that could not be published",
	})
)

func Init() {
	prometheus.MustRegister(
		CheckoutTotal,
		CheckoutLines,
		CheckoutDuration,
		OrderEventsFailed,
	)
}
