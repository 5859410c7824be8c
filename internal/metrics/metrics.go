// Package metrics exposes Prometheus collectors for lead operations and
// HTTP traffic. All methods are safe on a nil *Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

const namespace = "buyerlead"

// Metrics holds every collector the service reports.
type Metrics struct {
	importRows     *prometheus.CounterVec
	importDuration prometheus.Histogram
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	exportRows     *prometheus.CounterVec
	leadChanges    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	importsActive  prometheus.GaugeFunc
}

var _ core.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with reg, or with the
// default registerer when reg is nil. activeImports, if non-nil, backs the
// active-imports gauge.
func New(reg prometheus.Registerer, activeImports func() int) *Metrics {
	m := &Metrics{
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "CSV import rows by outcome",
		}, []string{"outcome"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Duration of CSV imports",
			Buckets:   prometheus.DefBuckets,
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Lead list and search requests",
		}, []string{"kind"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Latency of lead list and search requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		exportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "rows_total",
			Help:      "Leads written to exports",
		}, []string{"format"}),
		leadChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "changes_total",
			Help:      "Lead history entries written, by action",
		}, []string{"action"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.importRows, m.importDuration, m.searches, m.searchDuration,
		m.exportRows, m.leadChanges, m.httpRequests, m.httpDuration)

	if activeImports != nil {
		m.importsActive = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "active",
			Help:      "Imports currently holding a slot",
		}, func() float64 { return float64(activeImports()) })
		reg.MustRegister(m.importsActive)
	}
	return m
}

func (m *Metrics) ImportFinished(imported, failed, warnings int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
	m.importRows.WithLabelValues("skipped").Add(float64(warnings))
	m.importDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) SearchFinished(kind string, _ int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind).Inc()
	m.searchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) ExportFinished(format string, rows int) {
	if m == nil {
		return
	}
	m.exportRows.WithLabelValues(format).Add(float64(rows))
}

func (m *Metrics) LeadChanged(action core.HistoryAction) {
	if m == nil {
		return
	}
	m.leadChanges.WithLabelValues(string(action)).Inc()
}

// ObserveHTTP records one request. route is the chi route pattern so label
// cardinality stays bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
