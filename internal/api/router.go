package api

import (
	"net/http"
	"time"

	"github.com/nikhilcherian/jobscout/pkg/health"
	"github.com/nikhilcherian/jobscout/pkg/metrics"
	"github.com/nikhilcherian/jobscout/pkg/middleware"
)

// NewRouter builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	GET    /                          → liveness message
//	POST   /api/v1/search             → run the search pipeline
//	GET    /api/v1/cache/stats        → response cache statistics
//	POST   /api/v1/cache/invalidate   → flush the response cache
//	GET    /health/live               → liveness probe
//	GET    /health/ready              → readiness probe
//
// Middleware chain (outermost first):
//
//	RequestID → CORS → Metrics → Timeout → handler
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(requestTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = CORS(DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	return chain
}
