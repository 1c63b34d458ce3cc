package metrics

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics exposes counters/histograms for the lead ingestion pipeline.
type IngestMetrics struct {
	inboundTotal      *prometheus.CounterVec
	leadsCreatedTotal *prometheus.CounterVec
	geocodeFallback   *prometheus.CounterVec
	extractionLatency prometheus.Histogram
}

func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadplatform",
			Subsystem: "ingest",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound channel webhooks",
		}, []string{"channel", "status"}),
		leadsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadplatform",
			Subsystem: "ingest",
			Name:      "leads_created_total",
			Help:      "Total leads created from inbound messages",
		}, []string{"source", "status"}),
		geocodeFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadplatform",
			Subsystem: "ingest",
			Name:      "geocode_fallback_total",
			Help:      "Geocode hits by cascade stage",
		}, []string{"stage"}),
		extractionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadplatform",
			Subsystem: "ingest",
			Name:      "extraction_latency_seconds",
			Help:      "Latency of structured extraction calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.leadsCreatedTotal, m.geocodeFallback, m.extractionLatency)
	return m
}

func (m *IngestMetrics) ObserveInbound(channel, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *IngestMetrics) ObserveLeadCreated(source, status string) {
	if m == nil {
		return
	}
	m.leadsCreatedTotal.WithLabelValues(source, status).Inc()
}

func (m *IngestMetrics) ObserveGeocodeStage(stage string) {
	if m == nil {
		return
	}
	m.geocodeFallback.WithLabelValues(stage).Inc()
}

func (m *IngestMetrics) ObserveExtractionLatency(seconds float64) {
	if m == nil {
		return
	}
	m.extractionLatency.Observe(seconds)
}
