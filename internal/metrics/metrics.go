// Package metrics exposes Prometheus instrumentation for the domain APIs
// and for the experience layer's relay to them.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay outcomes.
const (
	OutcomeSuccess = "success"
)

// Relay records outbound domain calls made by the experience layer.
type Relay struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRelay creates relay metrics on the default registerer.
func NewRelay() *Relay {
	return newRelayWithRegisterer(prometheus.DefaultRegisterer)
}

func newRelayWithRegisterer(registerer prometheus.Registerer) *Relay {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Relay{
		calls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ipa_relay_calls_total",
			Help: "Total number of calls relayed to domain APIs",
		}, []string{"operation", "outcome"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "ipa_relay_call_duration_seconds",
			Help:    "Duration of calls relayed to domain APIs in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"operation"}),
	}
}

// ObserveCall records one relayed call. outcome is OutcomeSuccess or a
// failure category.
func (m *Relay) ObserveCall(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// HTTP records inbound requests served by one service.
type HTTP struct {
	service  string
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewHTTP creates request metrics for service on the default registerer.
func NewHTTP(service string) *HTTP {
	return newHTTPWithRegisterer(service, prometheus.DefaultRegisterer)
}

func newHTTPWithRegisterer(service string, registerer prometheus.Registerer) *HTTP {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &HTTP{
		service: service,
		requests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ipa_http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"service", "method", "route", "status"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "ipa_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "route"}),
		inFlight: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "ipa_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}, []string{"service"}),
	}
}

// Middleware records every request under its chi route pattern.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inFlight.WithLabelValues(m.service).Inc()
		defer m.inFlight.WithLabelValues(m.service).Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		m.requests.WithLabelValues(m.service, r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(m.service, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	collector := prometheus.NewGaugeVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
