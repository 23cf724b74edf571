package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/nikhilcherian/jobscout/pkg/kafka"
)

// maxLatencySamples bounds the in-memory latency reservoir; the oldest half
// is discarded when full.
const maxLatencySamples = 100000

// Aggregator accumulates search events in memory and serves aggregate
// statistics. State is process-local and resets on restart.
type Aggregator struct {
	mu             sync.RWMutex
	totalSearches  int64
	emptySearches  int64
	cacheHits      int64
	totalReturned  int64
	latenciesMs    []int64
	searchesByCity map[string]int64
	lastEventAt    time.Time
	logger         *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latenciesMs:    make([]int64, 0, 1024),
		searchesByCity: make(map[string]int64),
		logger:         slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka message handler that feeds events into agg.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			return err
		}
		agg.Record(event)
		return nil
	}
}

// Record folds a single event into the aggregate state.
func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalSearches++
	a.totalReturned += int64(event.Returned)
	if event.Returned == 0 {
		a.emptySearches++
	}
	if event.CacheHit {
		a.cacheHits++
	}
	if event.City != "" {
		a.searchesByCity[event.City]++
	}
	a.lastEventAt = event.Timestamp

	if len(a.latenciesMs) >= maxLatencySamples {
		half := len(a.latenciesMs) / 2
		a.latenciesMs = append(a.latenciesMs[:0], a.latenciesMs[half:]...)
	}
	a.latenciesMs = append(a.latenciesMs, event.LatencyMs)
}

// CityCount pairs a city with its search count.
type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// Stats is a point-in-time snapshot of the aggregate state.
type Stats struct {
	TotalSearches int64       `json:"total_searches"`
	EmptySearches int64       `json:"empty_searches"`
	EmptyRate     float64     `json:"empty_rate"`
	CacheHitRate  float64     `json:"cache_hit_rate"`
	AvgReturned   float64     `json:"avg_returned"`
	LatencyP50Ms  int64       `json:"latency_p50_ms"`
	LatencyP95Ms  int64       `json:"latency_p95_ms"`
	LatencyP99Ms  int64       `json:"latency_p99_ms"`
	TopCities     []CityCount `json:"top_cities"`
	LastEventAt   time.Time   `json:"last_event_at"`
}

// Snapshot computes the current statistics.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{
		TotalSearches: a.totalSearches,
		EmptySearches: a.emptySearches,
		LastEventAt:   a.lastEventAt,
	}
	if a.totalSearches > 0 {
		stats.EmptyRate = float64(a.emptySearches) / float64(a.totalSearches)
		stats.CacheHitRate = float64(a.cacheHits) / float64(a.totalSearches)
		stats.AvgReturned = float64(a.totalReturned) / float64(a.totalSearches)
	}

	if len(a.latenciesMs) > 0 {
		sorted := make([]int64, len(a.latenciesMs))
		copy(sorted, a.latenciesMs)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		stats.LatencyP50Ms = percentile(sorted, 50)
		stats.LatencyP95Ms = percentile(sorted, 95)
		stats.LatencyP99Ms = percentile(sorted, 99)
	}

	stats.TopCities = topCities(a.searchesByCity, 10)
	return stats
}

// StatsHandler serves the aggregate statistics as JSON.
func (a *Aggregator) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(a.Snapshot()); err != nil {
			a.logger.Error("failed to write stats", "error", err)
		}
	}
}

func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p*len(sorted) + 99) / 100
	if idx > 0 {
		idx--
	}
	return sorted[idx]
}

func topCities(counts map[string]int64, n int) []CityCount {
	out := make([]CityCount, 0, len(counts))
	for city, count := range counts {
		out = append(out, CityCount{City: city, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].City < out[j].City
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
