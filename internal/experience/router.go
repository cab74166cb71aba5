package experience

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/golden-ipa/internal/metrics"
	"github.com/ignite/golden-ipa/internal/pkg/httputil"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// maxEventBytes bounds a resolver event.
const maxEventBytes = 1 << 20

// RouterOptions configures the public router.
type RouterOptions struct {
	AllowedOrigins []string
	Metrics        *metrics.HTTP
}

// NewRouter builds the public experience API: POST /resolve plus health
// and metrics.
func NewRouter(res *Resolvers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.OK(w, map[string]string{"status": "healthy", "service": "experience"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Post("/resolve", resolveHandler(res))

	return r
}

func resolveHandler(res *Resolvers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&ev); err != nil {
			respond(w, nil, fmt.Errorf("%w: %v", ErrBadEvent, err))
			return
		}

		result, err := res.Resolve(r.Context(), ev)
		respond(w, result, err)
	}
}

func respond(w http.ResponseWriter, result any, err error) {
	if err == nil {
		httputil.OK(w, result)
		return
	}

	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("resolve failed", "status", status, "error", err.Error())
	} else {
		logger.Warn("resolve rejected", "status", status, "error", err.Error())
	}
	httputil.JSON(w, status, body)
}
