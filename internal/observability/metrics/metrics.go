package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters for buyer mutations and bulk imports.
type LeadMetrics struct {
	mutationsTotal  *prometheus.CounterVec
	conflictsTotal  prometheus.Counter
	importRowsTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buyerleads",
			Subsystem: "buyers",
			Name:      "mutations_total",
			Help:      "Total create/update/delete attempts",
		}, []string{"op", "status"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buyerleads",
			Subsystem: "buyers",
			Name:      "conflicts_total",
			Help:      "Updates rejected by the optimistic-concurrency check",
		}),
		importRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buyerleads",
			Subsystem: "buyers",
			Name:      "import_rows_total",
			Help:      "Bulk import rows by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal, m.conflictsTotal, m.importRowsTotal)
	return m
}

func (m *LeadMetrics) ObserveMutation(op, status string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(op, status).Inc()
}

func (m *LeadMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

func (m *LeadMetrics) ObserveImport(outcome string, rows int) {
	if m == nil {
		return
	}
	n := float64(rows)
	if n <= 0 {
		n = 1
	}
	m.importRowsTotal.WithLabelValues(outcome).Add(n)
}
