package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware holds the request metrics registered with a registry.
type PrometheusMiddleware struct {
	requestCount  *prometheus.CounterVec
	samplesTotal  prometheus.Counter
	uploadedBytes prometheus.Counter
}

// NewPrometheusMiddleware creates request metrics and registers them with reg.
func NewPrometheusMiddleware(reg prometheus.Registerer) (*PrometheusMiddleware, error) {
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		samplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "samples_accepted_total",
			Help: "Total number of accepted voice sample submissions.",
		}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "samples_accepted_bytes_total",
			Help: "Total audio bytes of accepted voice sample submissions.",
		}),
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.samplesTotal, m.uploadedBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveAccepted records one committed sample of the given audio size.
func (m *PrometheusMiddleware) ObserveAccepted(size int64) {
	m.samplesTotal.Inc()
	m.uploadedBytes.Add(float64(size))
}

// Handler returns the fiber middleware handler counting requests by
// method, route pattern, and status.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Exclude /metrics from being counted
		if c.Path() == "/metrics" {
			return c.Next()
		}

		err := c.Next()

		// Prefer the route pattern (e.g. /samples/:id) over the raw path so
		// label cardinality stays bounded.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(
			c.Method(),
			path,
			strconv.Itoa(status),
		).Inc()

		return err
	}
}
