// Package api serves the randomization, sample-size and allocation
// operations over HTTP.
package api

import (
	"net/http"

	"gotrial/app"
	"gotrial/internal"
	"gotrial/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the API dispatches to
type Deps struct {
	Randomizer  ports.RandomizerPort
	Allocations *app.AllocationService
	Enrollment  *app.EnrollmentService
	Power       *app.PowerService
	Logger      *internal.Logger

	// Gatherer is served on MetricsPath when both are set
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// Server is the HTTP surface
type Server struct {
	router *chi.Mux
	deps   Deps
	logger *internal.Logger
}

// NewServer builds the router
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		logger: logger.With("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	if s.deps.Gatherer != nil && s.deps.MetricsPath != "" {
		s.router.Handle(s.deps.MetricsPath, promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/randomization/sequence", s.handleSequence)
		r.Post("/sample-size", s.handleSampleSize)

		r.Post("/designs/allocate", s.handleAllocate)
		r.Post("/designs/allocate/batch", s.handleAllocateBatch)
		r.Post("/designs/power", s.handlePower)
		r.Get("/designs/{id}/allocations", s.handleListAllocations)

		r.Get("/allocations/{id}", s.handleGetAllocation)
		r.Get("/allocations/{id}/verify", s.handleVerify)
		r.Post("/allocations/{id}/enroll", s.handleEnroll)
		r.Get("/allocations/{id}/enrollment", s.handleEnrollment)
	})
}
