// Package app composes the HTTP application: the root router with the shared
// middleware stack and the versioned API sub-applications mounted under it.
package app

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/football-api/internal/http/health"
	"github.com/janisto/football-api/internal/http/v1/routes"
	applog "github.com/janisto/football-api/internal/platform/logging"
	appmiddleware "github.com/janisto/football-api/internal/platform/middleware"
	"github.com/janisto/football-api/internal/platform/respond"
)

// defaultMaxBodyBytes caps request bodies when Options leaves it unset.
const defaultMaxBodyBytes = 1 << 20

// Options configures the composed application.
type Options struct {
	// Version is reported by /health and the OpenAPI document.
	Version string
	// AllowedOrigins restricts CORS; empty allows every origin.
	AllowedOrigins []string
	// MaxBodyBytes limits request body size; zero uses 1 MB.
	MaxBodyBytes int64
}

// New returns the root router with the v1 sub-application mounted at /api/v1.
func New(opts Options) *chi.Mux {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	router := chi.NewRouter()
	// Set before mounting so the sub-routers inherit them.
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(routes.Prefix+"/docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(opts.AllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For / X-Real-IP; only run behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(opts.MaxBodyBytes),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(opts.Version))
	router.Route(routes.Prefix, func(r chi.Router) {
		routes.New(r, opts.Version)
	})
	return router
}
