package api

import (
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusKey holds the status written by the response helpers.
const statusKey = "glfm.status"

type Metrics struct {
	OperationTotal   *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics registers the API collectors on a fresh registry. stored
// reports the number of latent states held in memory.
func NewMetrics(stored func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		OperationTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glfm_operations_total",
				Help: "Total number of API operations",
			},
			[]string{"operation", "status"}, // status: ok/error
		),
		OperationLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glfm_operation_latency_seconds",
				Help:    "Latency of API operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		registry: reg,
	}
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "glfm_latent_states",
			Help: "Number of latent states held in memory",
		},
		func() float64 { return float64(stored()) },
	)
	return m
}

// instrument counts and times every call of h under op.
func (m *Metrics) instrument(op string, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		start := time.Now()
		err := h(c)
		m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		status := "ok"
		if code, _ := c.Get(statusKey).(int); err != nil || code >= 400 {
			status = "error"
		}
		m.OperationTotal.WithLabelValues(op, status).Inc()
		return err
	}
}

func (m *Metrics) handler(c *echo.Context) error {
	promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(c.Response(), c.Request())
	return nil
}
