package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveMutation("create", "ok")
	m.ObserveMutation("create", "ok")
	m.ObserveMutation("update", "error")
	m.ObserveConflict()
	m.ObserveImport("inserted", 42)
	m.ObserveImport("too_many_rows", 0)

	if got := testutil.ToFloat64(m.mutationsTotal.WithLabelValues("create", "ok")); got != 2 {
		t.Errorf("expected 2 create/ok mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.conflictsTotal); got != 1 {
		t.Errorf("expected 1 conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.importRowsTotal.WithLabelValues("inserted")); got != 42 {
		t.Errorf("expected 42 inserted rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.importRowsTotal.WithLabelValues("too_many_rows")); got != 1 {
		t.Errorf("expected too_many_rows to count the attempt, got %v", got)
	}
}

func TestLeadMetricsNilSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveMutation("create", "ok")
	m.ObserveConflict()
	m.ObserveImport("inserted", 1)
}
