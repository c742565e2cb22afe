package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collector's live counters. BytesReceived is written by
// the ingestion goroutine and snapshotted concurrently by the exposition
// handler; the prometheus client guarantees atomic increments.
type Metrics struct {
	registry *prometheus.Registry

	BytesReceived  *prometheus.CounterVec
	RecordsDropped prometheus.Counter
}

// New creates a registry with the collector's counter families.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	bytesReceived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipfix_bytes_received_total",
		Help: "Total number of bytes downloaded by a local endpoint, keyed by its hardware address.",
	}, []string{"mac"})

	recordsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipfix_records_dropped_total",
		Help: "Flow records discarded because a required element was missing or the datagram was undecodable.",
	})

	registry.MustRegister(bytesReceived, recordsDropped)

	return &Metrics{
		registry:       registry,
		BytesReceived:  bytesReceived,
		RecordsDropped: recordsDropped,
	}
}

// AddBytes adds a download observation's byte count to the endpoint's counter.
func (m *Metrics) AddBytes(mac string, bytes uint32) {
	m.BytesReceived.WithLabelValues(mac).Add(float64(bytes))
}

// DropRecord counts one skipped flow record.
func (m *Metrics) DropRecord() {
	m.RecordsDropped.Inc()
}

// Handler returns the text exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
