// Package integration contains tests that exercise the full HTTP stack:
// router, middleware, pipeline, and provider client, with the external
// provider replaced by an httptest server and the embedding model by a
// deterministic in-memory double.
//
// Run with:
//
//	go test -v ./test/integration/...
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilcherian/jobscout/internal/ai/aitest"
	"github.com/nikhilcherian/jobscout/internal/api"
	"github.com/nikhilcherian/jobscout/internal/keywords"
	"github.com/nikhilcherian/jobscout/internal/pipeline"
	"github.com/nikhilcherian/jobscout/internal/provider"
	"github.com/nikhilcherian/jobscout/internal/rank"
	"github.com/nikhilcherian/jobscout/pkg/config"
	"github.com/nikhilcherian/jobscout/pkg/health"
)

// newProviderBackend serves a canned JSearch-style response and counts
// requests.
func newProviderBackend(t *testing.T, body string, status int, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.Header.Get("x-rapidapi-key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newService wires the full API on top of the given provider backend.
func newService(t *testing.T, providerURL string) *httptest.Server {
	t.Helper()

	client := provider.NewClient(config.ProviderConfig{
		BaseURL:  providerURL,
		Key:      "integration-key",
		Host:     "jsearch.p.rapidapi.com",
		Country:  "in",
		Language: "en",
		Timeout:  5 * time.Second,
	}, nil)

	embedder := aitest.NewEmbedder()
	p := pipeline.New(
		keywords.NewExtractor(embedder),
		client,
		rank.New(&rank.TFIDFScorer{}),
		pipeline.Config{TopKeyphrases: 5, MaxResults: 10, DefaultCountry: "in"},
		nil,
	)

	h := api.New(p, nil, nil, nil)
	srv := httptest.NewServer(api.NewRouter(h, health.NewChecker(), nil, 10*time.Second))
	t.Cleanup(srv.Close)
	return srv
}

const providerBody = `{
	"status": "OK",
	"data": [
		{"job_title": "Senior Golang Engineer", "employer_name": "Acme",
		 "job_posted_at_datetime_utc": "2025-08-20T09:00:00Z", "job_city": "Pune"},
		{"job_title": "Backend Engineer (Go, Kubernetes)", "employer_name": "Initech",
		 "job_posted_at_datetime_utc": "2025-08-25T12:00:00Z", "job_city": "Pune"},
		{"job_title": "Office Receptionist", "employer_name": "FrontDesk Inc",
		 "job_city": "Pune"}
	]
}`

func TestSearchEndToEnd(t *testing.T) {
	var providerCalls atomic.Int64
	backend := newProviderBackend(t, providerBody, http.StatusOK, &providerCalls)
	service := newService(t, backend.URL)

	payload := `{
		"description": "Senior Golang engineer with Kubernetes and PostgreSQL",
		"city": "Pune",
		"country": "in"
	}`
	resp, err := http.Post(service.URL+"/api/v1/search", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), providerCalls.Load())

	var body struct {
		Description string           `json:"description"`
		City        string           `json:"city"`
		Results     []map[string]any `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Pune", body.City)
	require.Len(t, body.Results, 3)

	// Go-heavy titles must outrank the receptionist role.
	last := body.Results[len(body.Results)-1]
	assert.Equal(t, "Office Receptionist", last["job_title"])
	assert.Equal(t, float64(0), last["match_score"])

	prev := 101.0
	for _, rec := range body.Results {
		score, ok := rec["match_score"].(float64)
		require.True(t, ok, "match_score missing on %v", rec["job_title"])
		assert.LessOrEqual(t, score, prev)
		prev = score

		assert.Equal(t, "API", rec["source"])
		assert.NotEmpty(t, rec["date_posted"])
	}
	assert.Equal(t, "20 Aug 2025", body.Results[0]["date_posted"].(string))
	assert.Equal(t, "N/A", last["date_posted"])
}

func TestSearchProviderFailure(t *testing.T) {
	backend := newProviderBackend(t, `{"message":"rate limited"}`, http.StatusTooManyRequests, nil)
	service := newService(t, backend.URL)

	resp, err := http.Post(service.URL+"/api/v1/search", "application/json",
		strings.NewReader(`{"description":"golang engineer","city":"Pune"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	// Provider failure degrades to an empty result set, not an error.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Results)
	assert.Empty(t, body.Results)
}

func TestSearchValidation(t *testing.T) {
	backend := newProviderBackend(t, providerBody, http.StatusOK, nil)
	service := newService(t, backend.URL)

	resp, err := http.Post(service.URL+"/api/v1/search", "application/json",
		strings.NewReader(`{"description":"  ","city":"Pune"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Please enter a job description.", body["error"])
}

func TestSearchResultCap(t *testing.T) {
	// 25 listings from the provider must come back capped at 10.
	var sb strings.Builder
	sb.WriteString(`{"status":"OK","data":[`)
	for i := 0; i < 25; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"job_title":"Golang Engineer","employer_name":"Acme"}`)
	}
	sb.WriteString(`]}`)

	backend := newProviderBackend(t, sb.String(), http.StatusOK, nil)
	service := newService(t, backend.URL)

	resp, err := http.Post(service.URL+"/api/v1/search", "application/json",
		strings.NewReader(`{"description":"golang engineer"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Results, 10)
}
