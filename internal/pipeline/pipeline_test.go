package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilcherian/jobscout/internal/ai/aitest"
	"github.com/nikhilcherian/jobscout/internal/keywords"
	"github.com/nikhilcherian/jobscout/internal/listing"
	"github.com/nikhilcherian/jobscout/internal/rank"
	apperrors "github.com/nikhilcherian/jobscout/pkg/errors"
)

// fakeSource returns canned listings and records the query it received.
type fakeSource struct {
	listings   []listing.Record
	query      string
	datePosted string
	country    string
	calls      int
}

func (f *fakeSource) Search(_ context.Context, query, datePosted, country string) []listing.Record {
	f.calls++
	f.query = query
	f.datePosted = datePosted
	f.country = country
	return f.listings
}

func sampleListings(n int) []listing.Record {
	out := make([]listing.Record, n)
	for i := range out {
		out[i] = listing.Record{
			"job_title":                  fmt.Sprintf("Golang Engineer %d", i),
			"employer_name":              "Acme",
			"job_posted_at_datetime_utc": "2025-08-27T10:30:00Z",
		}
	}
	return out
}

func newTestPipeline(source JobSource, cfg Config) *Pipeline {
	extractor := keywords.NewExtractor(aitest.NewEmbedder())
	ranker := rank.New(&rank.TFIDFScorer{})
	return New(extractor, source, ranker, cfg, nil)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	description := "Senior Golang engineer with Kubernetes and PostgreSQL background"

	t.Run("blank description is rejected before any work", func(t *testing.T) {
		source := &fakeSource{}
		p := newTestPipeline(source, Config{})

		for _, desc := range []string{"", "   ", "\n\t"} {
			_, err := p.Search(ctx, Request{Description: desc})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Equal(t, "Please enter a job description.", apperrors.Message(err))
			assert.Equal(t, 400, apperrors.HTTPStatusCode(err))
		}
		assert.Zero(t, source.calls)
	})

	t.Run("echoes request parameters", func(t *testing.T) {
		p := newTestPipeline(&fakeSource{}, Config{})
		resp, err := p.Search(ctx, Request{
			Description: description,
			City:        "Pune",
			State:       "Maharashtra",
			Country:     "in",
			DatePosted:  "week",
		})
		require.NoError(t, err)
		assert.Equal(t, description, resp.Description)
		assert.Equal(t, "Pune", resp.City)
		assert.Equal(t, "Maharashtra", resp.State)
		assert.Equal(t, "in", resp.Country)
		assert.Equal(t, "week", resp.DatePosted)
	})

	t.Run("defaults country and date window", func(t *testing.T) {
		source := &fakeSource{}
		p := newTestPipeline(source, Config{DefaultCountry: "in"})
		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		assert.Equal(t, "in", resp.Country)
		assert.Equal(t, "all", resp.DatePosted)
		assert.Equal(t, "in", source.country)
		assert.Equal(t, "all", source.datePosted)
	})

	t.Run("city flows into the provider query", func(t *testing.T) {
		source := &fakeSource{}
		p := newTestPipeline(source, Config{})
		_, err := p.Search(ctx, Request{Description: description, City: "Pune"})
		require.NoError(t, err)
		assert.Contains(t, source.query, "Pune")
	})

	t.Run("results truncated to the configured maximum", func(t *testing.T) {
		source := &fakeSource{listings: sampleListings(25)}
		p := newTestPipeline(source, Config{MaxResults: 10})
		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		assert.Len(t, resp.Results, 10)
	})

	t.Run("fewer listings than the maximum pass through", func(t *testing.T) {
		source := &fakeSource{listings: sampleListings(3)}
		p := newTestPipeline(source, Config{MaxResults: 10})
		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		assert.Len(t, resp.Results, 3)
	})

	t.Run("results are enriched and ordered", func(t *testing.T) {
		source := &fakeSource{listings: []listing.Record{
			{"job_title": "Bakery Assistant", "job_posted_at_datetime_utc": "2025-08-27T10:30:00Z"},
			{"job_title": "Senior Golang Engineer", "job_posted_at_datetime_utc": "2025-01-05"},
		}}
		p := newTestPipeline(source, Config{})
		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)

		// Title overlap with the description must rank first.
		assert.Equal(t, "Senior Golang Engineer", resp.Results[0].String("job_title"))
		assert.GreaterOrEqual(t, resp.Results[0].Score(), resp.Results[1].Score())

		for _, rec := range resp.Results {
			assert.Equal(t, "API", rec.String(listing.SourceField))
			score := rec.Score()
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
		assert.Equal(t, "05 Jan 2025", resp.Results[0].String(listing.DatePostedField))
		assert.Equal(t, "27 Aug 2025", resp.Results[1].String(listing.DatePostedField))
	})

	t.Run("missing posting date becomes N/A", func(t *testing.T) {
		source := &fakeSource{listings: []listing.Record{{"job_title": "Golang Engineer"}}}
		p := newTestPipeline(source, Config{})
		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		assert.Equal(t, "N/A", resp.Results[0].String(listing.DatePostedField))
	})

	t.Run("zero provider listings yield an empty result array", func(t *testing.T) {
		p := newTestPipeline(&fakeSource{}, Config{})
		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		require.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
	})

	t.Run("scoring failure degrades to zero scores in provider order", func(t *testing.T) {
		embedder := aitest.NewEmbedder()
		embedder.EmbedQueryFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model offline")
		}
		scorer, err := rank.NewScorer("embedding", embedder)
		require.NoError(t, err)

		source := &fakeSource{listings: []listing.Record{
			{"job_title": "First"},
			{"job_title": "Second"},
		}}
		p := New(keywords.NewExtractor(embedder), source, rank.New(scorer), Config{}, nil)

		resp, err := p.Search(ctx, Request{Description: description})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "First", resp.Results[0].String("job_title"))
		assert.Equal(t, "Second", resp.Results[1].String("job_title"))
		assert.Zero(t, resp.Results[0].Score())
		assert.Zero(t, resp.Results[1].Score())
	})
}
