package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strut-web/strut/framework/dispatch"
)

const contextKeyMetricsStart = "metrics.start"

// Metrics records request counts and latencies per method and status.
type Metrics struct {
	dispatch.NopMiddleware

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the middleware and registers its collectors. Pass
// prometheus.DefaultRegisterer outside tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strut_http_requests_total",
			Help: "Handled HTTP requests.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strut_http_request_duration_seconds",
			Help:    "Request handling latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) BeforeRoute(ctx *dispatch.Context) error {
	ctx.Set(contextKeyMetricsStart, time.Now())
	return nil
}

func (m *Metrics) AfterHandler(ctx *dispatch.Context) error {
	status := ctx.Response.Status()
	if status == 0 {
		status = 200
	}
	m.requests.WithLabelValues(ctx.Request.Method(), strconv.Itoa(status)).Inc()

	if v, ok := ctx.Get(contextKeyMetricsStart); ok {
		if start, ok := v.(time.Time); ok {
			m.duration.WithLabelValues(ctx.Request.Method()).Observe(time.Since(start).Seconds())
		}
	}
	return nil
}
