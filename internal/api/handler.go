// Package api exposes the search pipeline over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikhilcherian/jobscout/internal/analytics"
	"github.com/nikhilcherian/jobscout/internal/cache"
	"github.com/nikhilcherian/jobscout/internal/listing"
	"github.com/nikhilcherian/jobscout/internal/pipeline"
	apperrors "github.com/nikhilcherian/jobscout/pkg/errors"
	"github.com/nikhilcherian/jobscout/pkg/logger"
	"github.com/nikhilcherian/jobscout/pkg/metrics"
)

// Handler serves the search API. Cache and collector are optional; a nil
// cache runs every request through the pipeline and a nil collector skips
// analytics.
type Handler struct {
	pipeline  *pipeline.Pipeline
	cache     *cache.ResponseCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Handler.
func New(p *pipeline.Pipeline, c *cache.ResponseCache, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		pipeline:  p,
		cache:     c,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "api-handler"),
	}
}

// Home answers the root path with a liveness message.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Job finder API is running"})
}

// Search runs the keyword-extraction and ranking pipeline for a posted job
// description and returns the ranked listings.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var resp *pipeline.Response
	var err error
	cacheHit := false

	if h.cache != nil {
		resp, cacheHit, err = h.cache.GetOrCompute(ctx, req, func() (*pipeline.Response, error) {
			return h.pipeline.Search(ctx, req)
		})
	} else {
		resp, err = h.pipeline.Search(ctx, req)
	}

	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search failed", "error", err)
		}
		h.writeError(w, status, apperrors.Message(err))
		return
	}

	latency := time.Since(start)
	if h.metrics != nil {
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}

	log.Info("search request served",
		"returned", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)

	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			DescriptionLen: len(req.Description),
			City:           resp.City,
			Country:        resp.Country,
			DatePosted:     resp.DatePosted,
			Returned:       len(resp.Results),
			TopScore:       topScore(resp.Results),
			LatencyMs:      latency.Milliseconds(),
			CacheHit:       cacheHit,
			RequestID:      logger.RequestID(ctx),
			Timestamp:      time.Now().UTC(),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// CacheStats reports response cache hit rates.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate flushes the response cache.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func topScore(results []listing.Record) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Score()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
