package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(city string, returned int, latencyMs int64, cacheHit bool) SearchEvent {
	return SearchEvent{
		DescriptionLen: 120,
		City:           city,
		Country:        "in",
		DatePosted:     "all",
		Returned:       returned,
		LatencyMs:      latencyMs,
		CacheHit:       cacheHit,
		Timestamp:      time.Now().UTC(),
	}
}

func TestAggregatorRecord(t *testing.T) {
	agg := NewAggregator()
	agg.Record(event("Pune", 10, 100, false))
	agg.Record(event("Pune", 0, 20, true))
	agg.Record(event("Bengaluru", 5, 60, false))

	stats := agg.Snapshot()
	assert.Equal(t, int64(3), stats.TotalSearches)
	assert.Equal(t, int64(1), stats.EmptySearches)
	assert.InDelta(t, 1.0/3, stats.EmptyRate, 1e-9)
	assert.InDelta(t, 1.0/3, stats.CacheHitRate, 1e-9)
	assert.InDelta(t, 5.0, stats.AvgReturned, 1e-9)

	require.Len(t, stats.TopCities, 2)
	assert.Equal(t, "Pune", stats.TopCities[0].City)
	assert.Equal(t, int64(2), stats.TopCities[0].Count)
}

func TestAggregatorPercentiles(t *testing.T) {
	agg := NewAggregator()
	for i := int64(1); i <= 100; i++ {
		agg.Record(event("Pune", 1, i, false))
	}

	stats := agg.Snapshot()
	assert.Equal(t, int64(50), stats.LatencyP50Ms)
	assert.Equal(t, int64(95), stats.LatencyP95Ms)
	assert.Equal(t, int64(99), stats.LatencyP99Ms)
}

func TestAggregatorEmpty(t *testing.T) {
	stats := NewAggregator().Snapshot()
	assert.Zero(t, stats.TotalSearches)
	assert.Zero(t, stats.EmptyRate)
	assert.Zero(t, stats.LatencyP50Ms)
	assert.Empty(t, stats.TopCities)
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator()
	handler := HandleEvent(agg)

	payload, err := json.Marshal(event("Chennai", 7, 40, false))
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), []byte("search"), payload))
	assert.Equal(t, int64(1), agg.Snapshot().TotalSearches)

	assert.Error(t, handler(context.Background(), []byte("search"), []byte("not json")))
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(event("Pune", 3, 80, false))

	rec := httptest.NewRecorder()
	agg.StatsHandler()(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalSearches)
}
