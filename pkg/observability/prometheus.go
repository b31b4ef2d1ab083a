package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qtranspile"

// PrometheusHooks implements PassHooks, CompileHooks, CacheHooks and HTTPHooks
// by recording Prometheus metrics.
type PrometheusHooks struct {
	passTotal        *prometheus.CounterVec
	passDuration     *prometheus.HistogramVec
	convergenceTotal *prometheus.CounterVec

	compileTotal    *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	swapsInserted   *prometheus.CounterVec

	cacheTotal    *prometheus.CounterVec
	cacheSetBytes *prometheus.CounterVec

	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	_ PassHooks    = (*PrometheusHooks)(nil)
	_ CompileHooks = (*PrometheusHooks)(nil)
	_ CacheHooks   = (*PrometheusHooks)(nil)
	_ HTTPHooks    = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the metrics and registers them with reg.
// It panics if the metrics are already registered there.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		passTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "runs_total",
			Help:      "Total number of pass runs",
		}, []string{"pass", "status"}),
		passDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "duration_seconds",
			Help:      "Duration of pass runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pass"}),
		convergenceTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "convergence_warnings_total",
			Help:      "Fixed-point loops that stopped at their iteration cap",
		}, []string{"loop"}),
		compileTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compile",
			Name:      "total",
			Help:      "Total number of compilations",
		}, []string{"target", "status"}),
		compileDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "compile",
			Name:      "duration_seconds",
			Help:      "Duration of compilations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
		swapsInserted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compile",
			Name:      "swaps_inserted_total",
			Help:      "Swap gates inserted by routing",
		}, []string{"target"}),
		cacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		cacheSetBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Served HTTP requests",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of served HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnPassStart(context.Context, string) {}

func (h *PrometheusHooks) OnPassComplete(_ context.Context, pass string, d time.Duration, err error) {
	h.passTotal.WithLabelValues(pass, status(err)).Inc()
	h.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnConvergenceWarning(_ context.Context, loop string, _ int) {
	h.convergenceTotal.WithLabelValues(loop).Inc()
}

func (h *PrometheusHooks) OnCompileStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnCompileComplete(_ context.Context, target string, stats CompileStats, d time.Duration, err error) {
	h.compileTotal.WithLabelValues(target, status(err)).Inc()
	h.compileDuration.WithLabelValues(target).Observe(d.Seconds())
	if err == nil {
		h.swapsInserted.WithLabelValues(target).Add(float64(stats.Swaps))
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheTotal.WithLabelValues(keyType, "set").Inc()
	h.cacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.httpTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
