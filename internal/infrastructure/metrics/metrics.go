package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/papeleria-api/internal/application/ports"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores de la API sobre un registro propio.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	stockEvents     *prometheus.CounterVec
	stockUnits      *prometheus.CounterVec
	publishFailures prometheus.Counter
}

// New registra los colectores (incluidos los de proceso y runtime de Go).
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_events_total",
			Help:      "Mutaciones de stock confirmadas por causa.",
		}, []string{"cause"}),
		stockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_total",
			Help:      "Unidades movidas por causa y dirección (in/out).",
		}, []string{"cause", "direction"}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_event_publish_failures_total",
			Help:      "Lotes de eventos de stock que no se pudieron publicar.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.stockEvents, m.stockUnits, m.publishFailures,
	)
	return m
}

// Registry expone el registro (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware mide cada petición usando la ruta registrada (no el path crudo) como etiqueta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler sirve /metrics a través del adaptador net/http de fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// InstrumentPublisher envuelve un publicador y cuenta eventos y fallos.
func (m *Metrics) InstrumentPublisher(next ports.StockEventPublisher) ports.StockEventPublisher {
	return &instrumentedPublisher{next: next, m: m}
}

type instrumentedPublisher struct {
	next ports.StockEventPublisher
	m    *Metrics
}

func (p *instrumentedPublisher) Publish(ctx context.Context, events ...entity.StockEvent) error {
	for _, ev := range events {
		p.m.stockEvents.WithLabelValues(ev.Cause).Inc()
		dir, units := "in", ev.Delta
		if units < 0 {
			dir, units = "out", -units
		}
		p.m.stockUnits.WithLabelValues(ev.Cause, dir).Add(float64(units))
	}
	if err := p.next.Publish(ctx, events...); err != nil {
		p.m.publishFailures.Inc()
		return err
	}
	return nil
}
