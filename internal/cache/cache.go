// Package cache provides an optional Redis-backed cache of search
// responses, keyed on the normalised request parameters. Concurrent misses
// for the same key are collapsed through singleflight so the pipeline runs
// once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/nikhilcherian/jobscout/internal/pipeline"
	"github.com/nikhilcherian/jobscout/pkg/config"
	pkgredis "github.com/nikhilcherian/jobscout/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "jobscout:search:"

// ResponseCache caches full pipeline responses with a TTL.
type ResponseCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a ResponseCache over an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *ResponseCache {
	return &ResponseCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "response-cache"),
	}
}

// Get returns the cached response for the request, if any. The echoed
// parameters are re-stamped from req: the key folds case and whitespace and
// ignores state, so the stored entry may have been written for a request
// that spells them differently.
func (c *ResponseCache) Get(ctx context.Context, req pipeline.Request) (*pipeline.Response, bool) {
	key := c.buildKey(req)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp pipeline.Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return rebindEcho(&resp, req), true
}

// Set stores a response under the request's key.
func (c *ResponseCache) Set(ctx context.Context, req pipeline.Request, resp *pipeline.Response) {
	key := c.buildKey(req)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// flightResult carries a response through singleflight along with whether
// it was served from cache.
type flightResult struct {
	resp *pipeline.Response
	hit  bool
}

// GetOrCompute returns the cached response or runs computeFn exactly once
// per key across concurrent callers, caching its result. The second return
// reports whether the response came from cache, including hits found inside
// the flight.
func (c *ResponseCache) GetOrCompute(
	ctx context.Context,
	req pipeline.Request,
	computeFn func() (*pipeline.Response, error),
) (*pipeline.Response, bool, error) {
	if resp, ok := c.Get(ctx, req); ok {
		return resp, true, nil
	}
	key := c.buildKey(req)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, req); ok {
			return flightResult{resp: resp, hit: true}, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, req, resp)
		return flightResult{resp: resp, hit: false}, nil
	})
	if err != nil {
		return nil, false, err
	}
	result := val.(flightResult)
	// The flight result is shared across joined callers; rebind gives each
	// caller a copy echoing its own parameters.
	return rebindEcho(result.resp, req), result.hit, nil
}

// Invalidate removes all cached search responses.
func (c *ResponseCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *ResponseCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResponseCache) buildKey(req pipeline.Request) string {
	raw := normalizeRequest(req)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// rebindEcho returns a shallow copy of resp whose echoed parameters match
// req. Country and date window keep the stored resolved values when the
// request leaves them unset, mirroring the pipeline's defaulting. Results
// are shared, not copied; they are read-only once ranked.
func rebindEcho(resp *pipeline.Response, req pipeline.Request) *pipeline.Response {
	out := *resp
	out.Description = req.Description
	out.City = req.City
	out.State = req.State
	if req.Country != "" {
		out.Country = req.Country
	}
	if req.DatePosted != "" {
		out.DatePosted = req.DatePosted
	}
	return &out
}

// normalizeRequest folds case and whitespace so trivially different
// requests share a cache entry. State is excluded from the key; the echoed
// parameters are re-stamped from the live request on every hit.
func normalizeRequest(req pipeline.Request) string {
	fields := []string{
		strings.Join(strings.Fields(strings.ToLower(req.Description)), " "),
		strings.TrimSpace(strings.ToLower(req.City)),
		strings.TrimSpace(strings.ToLower(req.Country)),
		strings.TrimSpace(strings.ToLower(req.DatePosted)),
	}
	return strings.Join(fields, "|")
}
