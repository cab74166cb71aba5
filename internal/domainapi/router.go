package domainapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/golden-ipa/internal/metrics"
	"github.com/ignite/golden-ipa/internal/pkg/httputil"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// RouterOptions configures a domain API router.
type RouterOptions struct {
	// BasePath mounts the API under a stage prefix such as "/prod".
	BasePath string
	// Auth guards every API route. Nil admits everyone.
	Auth *Authenticator
	// Metrics records every request. Nil disables request metrics.
	Metrics *metrics.HTTP
}

// NewCustomersRouter builds the customers API router.
func NewCustomersRouter(h *CustomersHandler, opts RouterOptions) *chi.Mux {
	return newRouter("customers", h.Ping, opts, func(r chi.Router) {
		r.Post("/customers/", h.Create)
		r.Get("/customers/{customerId}", h.Get)
	})
}

// NewOrdersRouter builds the orders API router.
func NewOrdersRouter(h *OrdersHandler, opts RouterOptions) *chi.Mux {
	return newRouter("orders", h.Ping, opts, func(r chi.Router) {
		r.Post("/customers/{customerId}/orders/", h.Create)
		r.Get("/customers/{customerId}/orders", h.List)
	})
}

// newRouter wires the common middleware. RealIP is deliberately absent:
// the origin check must see the TCP peer.
func newRouter(service string, ping func(context.Context) error, opts RouterOptions, routes func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	// Health and metrics (no auth required)
	r.Get("/health", healthHandler(service, ping))
	r.Handle("/metrics", metrics.Handler())

	api := func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth.Middleware)
		}
		routes(r)
	}

	if base := "/" + strings.Trim(opts.BasePath, "/"); base != "/" {
		r.Route(base, api)
	} else {
		r.Group(api)
	}
	return r
}

func healthHandler(service string, ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			logger.Warn("health check failed", "service", service, "error", err.Error())
			httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": service,
			})
			return
		}
		httputil.OK(w, map[string]string{"status": "healthy", "service": service})
	}
}
