package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestOrderCounters(t *testing.T) {
	m := New()
	m.OrderPlaced("CUSTOMER")
	m.OrderPlaced("CUSTOMER")
	m.OrderPlaced("CASHIER")
	m.PaymentConfirmed("CASH", decimal.NewFromInt(31000))

	if got := testutil.ToFloat64(m.ordersPlaced.WithLabelValues("CUSTOMER")); got != 2 {
		t.Errorf("CUSTOMER orders: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.paymentsConfirmed.WithLabelValues("CASH")); got != 1 {
		t.Errorf("CASH payments: got %v, want 1", got)
	}
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/orders/"+id, nil))
	}

	if n := testutil.CollectAndCount(m.requestDuration); n != 1 {
		t.Errorf("series: got %d, want 1", n)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `route="/orders/{id}"`) || !strings.Contains(body, `status="404"`) {
		t.Errorf("metrics output missing route labels:\n%s", body)
	}
}
