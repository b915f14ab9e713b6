package metrics

import (
	"net/http"
	"strconv"
	"time"

	"cedra_storefront/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cedra"

// Metrics implémente orders.Recorder et compte les requêtes HTTP
type Metrics struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	OrdersCreated *prometheus.CounterVec
	StatusChanges *prometheus.CounterVec
	CartMutations *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// New enregistre les compteurs dans reg ; nil = registre global
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders placed, by payment method.",
		}, []string{"method"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status updates, by new status.",
		}, []string{"status"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations, by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	m.gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, m.gatherer = reg, reg
	}
	registerer.MustRegister(m.Requests, m.LatencyMS, m.OrdersCreated, m.StatusChanges, m.CartMutations)
	return m
}

func (m *Metrics) OrderCreated(method models.PaymentMethod) {
	m.OrdersCreated.WithLabelValues(string(method)).Inc()
}

func (m *Metrics) StatusChanged(status models.OrderStatus) {
	m.StatusChanges.WithLabelValues(string(status)).Inc()
}

// CartMutation compte une opération du panier ; err == nil → "ok"
func (m *Metrics) CartMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CartMutations.WithLabelValues(operation, outcome).Inc()
}

// Middleware mesure chaque route par son motif (FullPath)
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
