package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursehub_orders_created_total",
			Help: "Number of orders created",
		},
	)

	PaymentsVerified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursehub_payments_verified_total",
			Help: "Number of payments verified and finalized",
		},
	)

	PaymentRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursehub_payment_rejections_total",
			Help: "Number of payment signature verification failures",
		},
	)

	GrantFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursehub_access_grant_failures_total",
			Help: "Number of paid orders whose course access grant failed",
		},
	)

	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursehub_webhook_events_total",
			Help: "Number of gateway webhook events received",
		},
		[]string{"event"},
	)
)

func Register() {
	prometheus.MustRegister(OrdersCreated, PaymentsVerified, PaymentRejections, GrantFailures, WebhookEvents)
}
