package routes

import (
	"net/http"
	"strings"

	"github.com/platefinder/backend/internal/api/handlers"
	"github.com/platefinder/backend/internal/api/middleware"
	"github.com/platefinder/backend/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler

	sseHandler *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(
	searchHandler *handlers.SearchHandler,
	sseHandler *handlers.SSEHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		searchHandler: searchHandler,
		sseHandler:    sseHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes

func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {

		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}

	})

	// Search pipeline endpoints

	r.mux.HandleFunc("POST /api/search", r.searchHandler.SubmitSearch)

	r.mux.HandleFunc("GET /api/search/jobs/{id}", r.searchHandler.GetJob)

	// Analytics endpoints

	r.mux.HandleFunc("GET /api/search/analytics/zero-results", r.searchHandler.GetZeroResultQueries)

	r.mux.HandleFunc("GET /api/search/analytics/requery-breakdown", r.searchHandler.GetRequeryBreakdown)

	// Stream endpoints
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/jobs/{id}", r.sseHandler.StreamJobUpdates)
		r.mux.HandleFunc("GET /api/stream/sessions/{id}", r.sseHandler.StreamSessionUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	// to everything except the SSE stream routes.
	handler = optimizeExceptStreams(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}

// optimizeExceptStreams applies compression and ETag handling to regular API
// responses while letting SSE streams flush through untouched.
func optimizeExceptStreams(next http.Handler) http.Handler {
	optimized := middleware.ResponseOptimization(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/stream/") {
			next.ServeHTTP(w, r)
			return
		}
		optimized.ServeHTTP(w, r)
	})
}
