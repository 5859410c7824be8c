package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

func TestImportFinished(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil)
	m.ImportFinished(3, 1, 2, time.Second)
	m.ImportFinished(2, 0, 0, time.Second)

	if got := testutil.ToFloat64(m.importRows.WithLabelValues("imported")); got != 5 {
		t.Errorf("imported = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.importRows.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.importRows.WithLabelValues("skipped")); got != 2 {
		t.Errorf("skipped = %v, want 2", got)
	}
}

func TestCountersByLabel(t *testing.T) {
	m := New(prometheus.NewRegistry(), nil)
	m.SearchFinished("search", 10, time.Millisecond)
	m.SearchFinished("list", 10, time.Millisecond)
	m.SearchFinished("search", 0, time.Millisecond)
	m.ExportFinished("csv", 7)
	m.LeadChanged(core.ActionStatusChanged)
	m.ObserveHTTP("GET", "/api/leads", 200, time.Millisecond)
	m.ObserveHTTP("GET", "", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.searches.WithLabelValues("search")); got != 2 {
		t.Errorf("searches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.exportRows.WithLabelValues("csv")); got != 7 {
		t.Errorf("export rows = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.leadChanges.WithLabelValues("STATUS_CHANGED")); got != 1 {
		t.Errorf("lead changes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestActiveImportsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	active := 3
	m := New(reg, func() int { return active })

	if got := testutil.ToFloat64(m.importsActive); got != 3 {
		t.Errorf("active = %v, want 3", got)
	}
	active = 0
	if got := testutil.ToFloat64(m.importsActive); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	m.ImportFinished(1, 1, 1, time.Second)
	m.SearchFinished("search", 1, time.Second)
	m.ExportFinished("csv", 1)
	m.LeadChanged(core.ActionCreated)
	m.ObserveHTTP("GET", "/", 200, time.Second)
}
