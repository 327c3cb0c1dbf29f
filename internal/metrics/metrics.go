package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	WebhookEvents    *prometheus.CounterVec
	DepositsCredited prometheus.Counter
	InvoiceRequests  *prometheus.CounterVec
	Purchases        *prometheus.CounterVec
	Errors           *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Payment webhook deliveries by outcome.",
			}, []string{"outcome"}),
			DepositsCredited: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deposits_credited_total",
				Help:      "Deposits that transitioned pending to approved and credited a balance.",
			}),
			InvoiceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoice_requests_total",
				Help:      "Invoice creation calls to the payment provider by status.",
			}, []string{"status"}),
			Purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "purchases_total",
				Help:      "Committed purchases by kind.",
			}, []string{"kind"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.WebhookEvents,
			metricsInstance.DepositsCredited,
			metricsInstance.InvoiceRequests,
			metricsInstance.Purchases,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
