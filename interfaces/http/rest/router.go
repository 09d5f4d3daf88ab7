// Package rest exposes the knowledge graph service over HTTP.
package rest

import (
	"net/http"

	"github.com/AlotfyDev/ArchiNote/application/services"
	"github.com/AlotfyDev/ArchiNote/infrastructure/observability"
	"github.com/AlotfyDev/ArchiNote/interfaces/http/rest/handlers"
	"github.com/AlotfyDev/ArchiNote/interfaces/http/rest/middleware"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options configures the router
type Options struct {
	GraphID        string
	Debug          bool
	AllowedOrigins []string

	// Auth is nil when authentication is disabled
	Auth *middleware.TokenValidator
}

// Router creates and configures the HTTP router
type Router struct {
	service *services.KnowledgeGraphService
	metrics *observability.Collector
	errors  *pkgerrors.ErrorHandler
	opts    Options
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	service *services.KnowledgeGraphService,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Router{
		service: service,
		metrics: metrics,
		errors:  pkgerrors.NewErrorHandler(logger, opts.Debug),
		opts:    opts,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Route("/api/v1", func(r chi.Router) {
		if rt.opts.Auth != nil {
			r.Use(middleware.Authenticate(rt.opts.Auth, rt.errors, rt.logger))
		}

		nodeHandler := handlers.NewNodeHandler(rt.service, rt.errors, rt.logger)
		edgeHandler := handlers.NewEdgeHandler(rt.service, rt.errors, rt.logger)
		pathHandler := handlers.NewPathHandler(rt.service, rt.errors, rt.logger)
		graphHandler := handlers.NewGraphHandler(rt.service, rt.errors, rt.opts.GraphID, rt.logger)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Get("/", nodeHandler.ListNodes)
			r.Get("/{nodeID}", nodeHandler.GetNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
			r.Get("/{nodeID}/neighbors", nodeHandler.Neighbors)
			r.Get("/{nodeID}/neighborhood", nodeHandler.Neighborhood)
			r.Get("/{nodeID}/pipeline", nodeHandler.Pipeline)
			r.Delete("/{nodeID}/relationships", edgeHandler.RemoveRelationships)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.CreateEdge)
			r.Get("/", edgeHandler.ListEdges)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})

		r.Route("/paths", func(r chi.Router) {
			r.Post("/", pathHandler.CreatePath)
			r.Get("/", pathHandler.ListPaths)
			r.Get("/{pathID}", pathHandler.GetPath)
			r.Delete("/{pathID}", pathHandler.DeletePath)
		})

		r.Route("/graph", func(r chi.Router) {
			r.Get("/path", graphHandler.FindPath)
			r.Get("/paths", graphHandler.FindAllPaths)
			r.Get("/cycles", graphHandler.Cycles)
			r.Get("/validate", graphHandler.Validate)
			r.Get("/orphans", graphHandler.Orphans)
			r.Get("/components", graphHandler.Components)
			r.Get("/stats", graphHandler.Stats)
			r.Post("/subgraph", graphHandler.Subgraph)
			r.Get("/export", graphHandler.Export)
			r.Post("/save", graphHandler.Save)
			r.Post("/load", graphHandler.Load)
		})
	})

	return router
}

// healthCheck reports liveness and whether the graph still accepts requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.service.Orchestrator().IsClosed() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"closed"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
