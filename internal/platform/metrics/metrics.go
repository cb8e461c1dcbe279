package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger node.
type Metrics struct {
	CustomersRegistered   prometheus.Counter
	CustomersRemoved      prometheus.Counter
	RequestsCreated       prometheus.Counter
	VotesCast             *prometheus.CounterVec
	PermissionRevocations prometheus.Counter
	RegisteredBanks       prometheus.Gauge
	EndpointLatency       *prometheus.HistogramVec
	AuditEventsDropped    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CustomersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_customers_registered_total",
			Help: "Total number of customer records registered",
		}),
		CustomersRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_customers_removed_total",
			Help: "Total number of customer records removed",
		}),
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_verification_requests_total",
			Help: "Total number of verification requests raised",
		}),
		VotesCast: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_votes_total",
			Help: "Total number of votes cast, labeled by direction",
		}, []string{"direction"}),
		PermissionRevocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_bank_permission_revocations_total",
			Help: "Total number of bank permission revocations",
		}),
		RegisteredBanks: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kyc_registered_banks",
			Help: "Current number of registered banks (quorum denominator)",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		AuditEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kyc_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		}),
	}
}

// IncrementVotes increments the vote counter for the given direction.
func (m *Metrics) IncrementVotes(direction string) {
	m.VotesCast.WithLabelValues(direction).Inc()
}

// SetRegisteredBanks records the current quorum denominator.
func (m *Metrics) SetRegisteredBanks(count int) {
	m.RegisteredBanks.Set(float64(count))
}

// ObserveEndpointLatency records the latency of an endpoint call.
func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}
