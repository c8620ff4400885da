package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus instruments for the HTTP surface
type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_http_requests_total",
			Help: "HTTP requests by method, route, and status code",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forum_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(m.requests, m.latency)

	return m
}

// middleware records a counter and latency sample per request, keyed
// by the matched route pattern rather than the raw URI
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)

		m.requests.WithLabelValues(method, route, status).Inc()
		m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}
