package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/metrics"
)

// RouterOptions configures the cross-cutting parts of the router.
type RouterOptions struct {
	AllowedOrigins []string
	// Metrics enables request metrics and the /metrics route when non-nil.
	Metrics *metrics.Collector
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(h *Handler, opts RouterOptions, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(recoverer(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.NotFound(routeNotFound)
	router.MethodNotAllowed(methodNotAllowed)

	router.Get("/", h.index)
	router.Get("/health", h.health)
	router.Get("/test-db", h.handle(h.testDB))
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	router.Route("/users", h.userRoutes)
	router.Route("/posts", h.postRoutes)
	router.Route("/comments", h.commentRoutes)

	return router
}
