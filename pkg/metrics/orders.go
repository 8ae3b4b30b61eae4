package metrics

import "github.com/prometheus/client_golang/prometheus"

// Settings fallback reasons.
const (
	FallbackMissing    = "missing"
	FallbackLookupErr  = "lookup_error"
	FallbackNotNumeric = "not_numeric"
)

// Reconcile outcomes.
const (
	ReconcileUpdated   = "updated"
	ReconcileUnchanged = "unchanged"
	ReconcileEmpty     = "skipped_empty"
)

// OrderMetrics counts pricing decisions and reconciliation outcomes.
type OrderMetrics struct {
	derived      *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	freeShipping prometheus.Counter
	reconciled   *prometheus.CounterVec
}

// NewOrderMetrics registers order metrics on reg. A nil registerer yields a
// no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		derived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "derived_total",
			Help:      "Order writes that recomputed derived totals, by operation.",
		}, []string{"op"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "settings_fallback_total",
			Help:      "Order defaults that fell back past a setting, by key and reason.",
		}, []string{"key", "reason"}),
		freeShipping: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "free_shipping_applied_total",
			Help:      "Orders created with shipping waived by the free-shipping threshold.",
		}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "reconciled_total",
			Help:      "Orders visited by total reconciliation, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.derived, m.fallbacks, m.freeShipping, m.reconciled)
	return m
}

// IncDerived counts a derivation pass for op (create or update).
func (m *OrderMetrics) IncDerived(op string) {
	if m == nil || m.derived == nil {
		return
	}
	m.derived.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFallback counts a settings lookup that did not yield a usable value.
func (m *OrderMetrics) IncFallback(key, reason string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(key), normalizeLabel(reason)).Inc()
}

// IncFreeShipping counts an order whose shipping was waived.
func (m *OrderMetrics) IncFreeShipping() {
	if m == nil || m.freeShipping == nil {
		return
	}
	m.freeShipping.Inc()
}

// IncReconciled counts one order visited by reconciliation.
func (m *OrderMetrics) IncReconciled(outcome string) {
	if m == nil || m.reconciled == nil {
		return
	}
	m.reconciled.WithLabelValues(normalizeLabel(outcome)).Inc()
}
