package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Labels to use for partitioning exchanges.
	exchangeLabels = []string{"method", "status", "outcome"}

	// Labels to use for partitioning exchange latencies.
	exchangeLatencyLabels = []string{"method"}
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

// ConnectorMetrics are the metrics collected for the exchanges
// a connector runs against the service
type ConnectorMetrics struct {
	// Counts of exchanges partitioned by method, status and outcome.
	Exchanges *prometheus.CounterVec

	// Latencies of exchanges partitioned by method.
	ExchangeLatencies *prometheus.SummaryVec
}

// NewConnectorMetrics creates the exchange metrics under the given
// namespace and registers them with registerer. A nil registerer
// leaves the metrics unregistered.
func NewConnectorMetrics(registerer prometheus.Registerer, namespace string) (*ConnectorMetrics, error) {
	metrics := &ConnectorMetrics{
		Exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "How many exchanges were run, partitioned by method, response status and outcome.",
			},
			exchangeLabels,
		),
		ExchangeLatencies: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace: namespace,
				Name:      "exchange_durations_seconds",
				Help:      "How long exchanges take from preparation to validation, partitioned by method.",
			},
			exchangeLatencyLabels,
		),
	}

	if registerer == nil {
		return metrics, nil
	}

	for _, c := range []prometheus.Collector{metrics.Exchanges, metrics.ExchangeLatencies} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return metrics, nil
}

// ExchangeCounter returns the counter for an exchange. A status of
// 0 means that no response was received.
func (m *ConnectorMetrics) ExchangeCounter(method string, status int, outcome string) prometheus.Counter {
	return m.Exchanges.WithLabelValues(method, strconv.Itoa(status), outcome)
}

// ExchangeTimer creates a new latency timer for an exchange.
func (m *ConnectorMetrics) ExchangeTimer(method string) *prometheus.Timer {
	return prometheus.NewTimer(m.ExchangeLatencies.WithLabelValues(method))
}
