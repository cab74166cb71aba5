package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRelayObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newRelayWithRegisterer(reg)

	m.ObserveCall("getCustomer", OutcomeSuccess, 20*time.Millisecond)
	m.ObserveCall("getCustomer", "status", 5*time.Millisecond)
	m.ObserveCall("getCustomer", "status", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("getCustomer", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("getCustomer", "status")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestRelayNilSafe(t *testing.T) {
	var m *Relay
	assert.NotPanics(t, func() { m.ObserveCall("x", OutcomeSuccess, time.Second) })
}

func TestRegisterTwiceReusesCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newRelayWithRegisterer(reg)
	second := newRelayWithRegisterer(reg)

	first.ObserveCall("createOrder", OutcomeSuccess, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.calls.WithLabelValues("createOrder", OutcomeSuccess)))
}

func TestHTTPMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newHTTPWithRegisterer("customers", reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/customers/{customerId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/customers/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/customers/abc", nil),
		httptest.NewRequest(http.MethodGet, "/customers/def", nil),
		httptest.NewRequest(http.MethodPost, "/customers/", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("customers", "GET", "/customers/{customerId}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("customers", "POST", "/customers/", "201")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight.WithLabelValues("customers")))
}
