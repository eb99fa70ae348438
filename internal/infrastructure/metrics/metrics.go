package metrics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var _ inventory.MovementObserver = (*LedgerMetrics)(nil)

// OutcomeApplied etiqueta outcome de un movimiento confirmado. Los rechazos usan el Kind en minúsculas.
const OutcomeApplied = "applied"

// LedgerMetrics cuenta movimientos por tipo (IN/OUT) y resultado.
type LedgerMetrics struct {
	movements *prometheus.CounterVec
	quantity  *prometheus.CounterVec
}

// NewLedgerMetrics crea los collectors y los registra en reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_movements_total",
				Help: "Total de movimientos de stock por tipo y resultado",
			},
			[]string{"kind", "outcome"},
		),
		quantity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_movement_quantity_total",
				Help: "Suma de cantidades movidas en movimientos confirmados",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.movements, m.quantity)
	return m
}

// MovementCommitted incrementa el contador applied y la cantidad movida.
func (m *LedgerMetrics) MovementCommitted(_ context.Context, mov entity.StockMovement) {
	m.movements.WithLabelValues(mov.Type, OutcomeApplied).Inc()
	m.quantity.WithLabelValues(mov.Type).Add(mov.Quantity.InexactFloat64())
}

// MovementRejected incrementa el contador con el tipo de error como outcome.
func (m *LedgerMetrics) MovementRejected(_ context.Context, movementType string, err error) {
	m.movements.WithLabelValues(movementType, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	return strings.ToLower(domain.KindOf(err).String())
}

// HTTPMetrics métricas de peticiones HTTP.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics crea los collectors y los registra en reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duración de peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe registra una petición terminada. route es el patrón (/api/products/:id), no la ruta concreta.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
