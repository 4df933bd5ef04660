package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics tracks the order cache and the enrichment pipeline.
type OrderMetrics struct {
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	upstreamFailures   *prometheus.CounterVec
	annotationFailures prometheus.Counter
	delayedOrders      prometheus.Gauge
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cache_hits_total",
			Help:      "Order cache lookups served from memory.",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cache_misses_total",
			Help:      "Order cache lookups that went upstream.",
		}, []string{"kind"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Failed calls to the upstream order API.",
		}, []string{"kind"}),
		annotationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_lookup_failures_total",
			Help:      "Per-order note lookups that failed and degraded to no annotation.",
		}),
		delayedOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delayed_orders",
			Help:      "Delayed orders seen on the last refresh.",
		}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.upstreamFailures, m.annotationFailures, m.delayedOrders)
	return m
}

func (m *OrderMetrics) CacheHit(kind string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *OrderMetrics) CacheMiss(kind string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *OrderMetrics) UpstreamFailure(kind string) {
	if m == nil || m.upstreamFailures == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *OrderMetrics) AnnotationFailure() {
	if m == nil || m.annotationFailures == nil {
		return
	}
	m.annotationFailures.Inc()
}

// SetDelayed records the delayed-order count from the latest refresh.
func (m *OrderMetrics) SetDelayed(n int) {
	if m == nil || m.delayedOrders == nil {
		return
	}
	m.delayedOrders.Set(float64(n))
}
