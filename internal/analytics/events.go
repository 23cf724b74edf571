// Package analytics tracks search activity and publishes it to Kafka
// without blocking the request path.
package analytics

import "time"

// SearchEvent describes a completed search request. The free-text
// description is not published, only its length.
type SearchEvent struct {
	DescriptionLen int       `json:"description_len"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	DatePosted     string    `json:"date_posted"`
	Returned       int       `json:"returned"`
	TopScore       float64   `json:"top_score"`
	LatencyMs      int64     `json:"latency_ms"`
	CacheHit       bool      `json:"cache_hit"`
	RequestID      string    `json:"request_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
