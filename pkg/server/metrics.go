package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments of the service. It implements
// pipeline.Metrics and chat.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	RecordsProcessed   prometheus.Counter
	RecordsSkipped     prometheus.Counter
	FactFields         prometheus.Counter
	ExtractionFailures prometheus.Counter
	ActiveSessions     prometheus.GaugeFunc
}

// NewMetrics builds the instrument set. activeSessions is polled on each
// scrape; pass nil to omit the gauge.
func NewMetrics(namespace string, activeSessions func() int) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RecordsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_records_processed_total",
			Help:      "Batch records that reached the write stage.",
		}),
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_records_skipped_total",
			Help:      "Batch records dropped due to unwrap, fetch, or shape failures.",
		}),
		FactFields: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fact_fields_written_total",
			Help:      "Fact field upserts attempted against the record store.",
		}),
		ExtractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Interactive fact extraction calls that failed.",
		}),
	}

	if activeSessions != nil {
		m.ActiveSessions = factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Live interactive sessions.",
		}, func() float64 { return float64(activeSessions()) })
	}

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordProcessed()  { m.RecordsProcessed.Inc() }
func (m *Metrics) RecordSkipped()    { m.RecordsSkipped.Inc() }
func (m *Metrics) ExtractionFailed() { m.ExtractionFailures.Inc() }
func (m *Metrics) FieldsWritten(n int) {
	m.FactFields.Add(float64(n))
}
