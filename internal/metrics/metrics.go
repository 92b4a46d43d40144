package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuhero/docuhero-api/internal/httpstatus"
)

const namespace = "docuhero"

// Auth gate outcomes.
const (
	OutcomeOK                = "ok"
	OutcomeMissingCredential = "missing_credential"
	OutcomeExpired           = "expired"
	OutcomeInvalid           = "invalid"
	OutcomeInsufficientRole  = "insufficient_role"
	OutcomeUnauthenticated   = "unauthenticated"
)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authOutcomes    *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
}

// New registers the gateway collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_gate_outcomes_total",
			Help:      "Access gate decisions by outcome",
		}, []string{"outcome"}),
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued by flow",
		}, []string{"flow"}),
	}
}

// AuthOutcome records a gate decision. Safe on a nil receiver.
func (m *Metrics) AuthOutcome(outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(outcome).Inc()
}

// TokenIssued records a token issued by the named flow. Safe on a nil receiver.
func (m *Metrics) TokenIssued(flow string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(flow).Inc()
}

// AuthOutcomeCounter exposes the underlying counter for assertions.
func (m *Metrics) AuthOutcomeCounter(outcome string) prometheus.Counter {
	return m.authOutcomes.WithLabelValues(outcome)
}

// Middleware observes every request after the rest of the chain ran.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Label values outlive the request; fasthttp reuses the method buffer.
		method := utils.CopyString(c.Method())
		route := c.Route().Path
		status := httpstatus.FromError(c, err)
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
