package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lead pipeline. Tracks intake
// outcomes, end-to-end delivery latency, and claim reconciliations.
type Metrics struct {
	IntakeTotal     *prometheus.CounterVec
	DeliveryLatency prometheus.Histogram
	ClaimsTotal     prometheus.Counter
	ThrottledTotal  prometheus.Counter
}

// New creates a Metrics instance with all lead module metrics registered.
func New() *Metrics {
	return &Metrics{
		IntakeTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgate_intake_total",
			Help: "Intake attempts by delivery status",
		}, []string{"status"}),
		DeliveryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadgate_delivery_latency_seconds",
			Help:    "Wall time from intake start to delivery outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ClaimsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadgate_claims_total",
			Help: "Total leads claimed by tenant staff",
		}),
		ThrottledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadgate_intake_throttled_total",
			Help: "Intake requests rejected by the per-client throttle",
		}),
	}
}

// ObserveIntake records one intake attempt and its latency.
func (m *Metrics) ObserveIntake(status string, start time.Time) {
	m.IntakeTotal.WithLabelValues(status).Inc()
	m.DeliveryLatency.Observe(time.Since(start).Seconds())
}

// IncrementClaims records a successful claim transition.
func (m *Metrics) IncrementClaims() {
	m.ClaimsTotal.Inc()
}

// IncrementThrottled records a throttled intake request.
func (m *Metrics) IncrementThrottled() {
	m.ThrottledTotal.Inc()
}
