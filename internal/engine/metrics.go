package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// prometheusRegisterer is an alias for prometheus.Registerer; it lets
// tests pass prometheus.NewRegistry() without pulling in the global
// default registry.
type prometheusRegisterer = prometheus.Registerer

// metricsSet holds the engine's prometheus instruments. When no
// registerer is supplied at construction, the instruments are registered
// against a private, unregistered registry so metric calls are always
// safe no-ops-with-bookkeeping rather than requiring nil checks at every
// call site.
type metricsSet struct {
	ordersSubmitted *prometheus.CounterVec
	tradesExecuted  prometheus.Counter
	matchLatency    prometheus.Histogram
	fokInvariant    prometheus.Counter
}

func newMetricsSet(reg prometheusRegisterer) *metricsSet {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &metricsSet{
		ordersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vela",
			Subsystem: "engine",
			Name:      "orders_submitted_total",
			Help:      "Orders submitted, labeled by order type and final status.",
		}, []string{"order_type", "status"}),
		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vela",
			Subsystem: "engine",
			Name:      "trades_executed_total",
			Help:      "Trades executed across all symbols.",
		}),
		matchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vela",
			Subsystem: "engine",
			Name:      "match_loop_duration_seconds",
			Help:      "Wall-clock duration of a single submission's matching loop.",
			Buckets:   prometheus.DefBuckets,
		}),
		fokInvariant: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vela",
			Subsystem: "engine",
			Name:      "fok_invariant_violations_total",
			Help:      "FOK orders where the precheck passed but execution left a residual.",
		}),
	}

	for _, c := range []prometheus.Collector{m.ordersSubmitted, m.tradesExecuted, m.matchLatency, m.fokInvariant} {
		_ = reg.Register(c) // AlreadyRegisteredError is fine for shared registries
	}
	return m
}
