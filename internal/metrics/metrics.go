// Package metrics exposes order and HTTP metrics for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics owns a registry so tests can create independent instances.
type Metrics struct {
	registry          *prometheus.Registry
	ordersPlaced      *prometheus.CounterVec
	paymentsConfirmed *prometheus.CounterVec
	orderValue        prometheus.Histogram
	requestDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "orders_placed_total",
			Help:      "Orders placed, by source (CUSTOMER or CASHIER).",
		}, []string{"source"}),
		paymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "payments_confirmed_total",
			Help:      "Orders moved to sedang_diproses by a payment, by method.",
		}, []string{"method"}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cafe",
			Name:      "order_final_total",
			Help:      "Final total of paid orders in whole currency units.",
			Buckets:   prometheus.ExponentialBuckets(10000, 2, 10),
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cafe",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersPlaced,
		m.paymentsConfirmed,
		m.orderValue,
		m.requestDuration,
	)
	return m
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderPlaced(source string) {
	m.ordersPlaced.WithLabelValues(source).Inc()
}

func (m *Metrics) PaymentConfirmed(method string, finalTotal decimal.Decimal) {
	m.paymentsConfirmed.WithLabelValues(method).Inc()
	m.orderValue.Observe(finalTotal.InexactFloat64())
}

// Middleware records request latency labelled by chi route pattern, so
// /orders/{id} is one series rather than one per order.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
