// Package observability метрики Prometheus для HTTP и решений по опрыскиванию.
package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// Триггеры решений для метки trigger
const (
	TriggerAutomatic = "automatic"
	TriggerManual    = "manual"
)

// Metrics набор метрик сервиса на собственном реестре
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	decisions         *prometheus.CounterVec
	spraySeconds      prometheus.Counter
	commandActive     prometheus.Gauge
}

// NewMetrics регистрирует метрики в reg; nil создаёт новый реестр
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spray_decisions_total",
			Help: "Total spray decisions recorded in the audit log.",
		}, []string{"trigger", "disease"}),
		spraySeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spray_seconds_total",
			Help: "Total spray duration requested by decisions with spray enabled.",
		}),
		commandActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spray_command_active",
			Help: "1 when the latest recorded decision requests spraying, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.decisions,
		m.spraySeconds,
		m.commandActive,
	)

	return m
}

// Middleware считает запросы gin по шаблону маршрута
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler отдаёт метрики в текстовом формате
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnDecision учитывает записанное решение
func (m *Metrics) OnDecision(ctx context.Context, entry entity.LogEntry) {
	if m == nil {
		return
	}
	trigger := TriggerAutomatic
	if entry.IsManual() {
		trigger = TriggerManual
	}
	m.decisions.WithLabelValues(trigger, entry.Disease).Inc()

	if entry.Spray {
		m.spraySeconds.Add(float64(entry.SprayTime))
		m.commandActive.Set(1)
		return
	}
	m.commandActive.Set(0)
}

var _ port.DecisionListener = (*Metrics)(nil)
