package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilcherian/jobscout/internal/listing"
)

// stubScorer returns canned scores and counts invocations.
type stubScorer struct {
	scores []float64
	err    error
	calls  int
}

func (s *stubScorer) Score(_ context.Context, _ string, titles []string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func (s *stubScorer) Name() string { return "stub" }

func records(titles ...string) []listing.Record {
	out := make([]listing.Record, len(titles))
	for i, title := range titles {
		out[i] = listing.Record{"job_title": title, "job_id": i}
	}
	return out
}

func TestRank(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by descending score", func(t *testing.T) {
		scorer := &stubScorer{scores: []float64{0.2, 0.9, 0.5}}
		ranked, err := New(scorer).Rank(ctx, "ref", records("low", "high", "mid"), "job_title")
		require.NoError(t, err)
		require.Len(t, ranked, 3)
		assert.Equal(t, "high", ranked[0].String("job_title"))
		assert.Equal(t, "mid", ranked[1].String("job_title"))
		assert.Equal(t, "low", ranked[2].String("job_title"))
	})

	t.Run("scores scale to 0-100 with two decimals", func(t *testing.T) {
		scorer := &stubScorer{scores: []float64{0.87654, 1.0, 0.0}}
		ranked, err := New(scorer).Rank(ctx, "ref", records("a", "b", "c"), "job_title")
		require.NoError(t, err)
		assert.Equal(t, 100.0, ranked[0].Score())
		assert.Equal(t, 87.65, ranked[1].Score())
		assert.Equal(t, 0.0, ranked[2].Score())
	})

	t.Run("equal scores keep input order", func(t *testing.T) {
		scorer := &stubScorer{scores: []float64{0.5, 0.5, 0.5}}
		ranked, err := New(scorer).Rank(ctx, "ref", records("first", "second", "third"), "job_title")
		require.NoError(t, err)
		assert.Equal(t, "first", ranked[0].String("job_title"))
		assert.Equal(t, "second", ranked[1].String("job_title"))
		assert.Equal(t, "third", ranked[2].String("job_title"))
	})

	t.Run("scores are written onto the input records", func(t *testing.T) {
		in := records("only")
		scorer := &stubScorer{scores: []float64{0.42}}
		_, err := New(scorer).Rank(ctx, "ref", in, "job_title")
		require.NoError(t, err)
		assert.Equal(t, 42.0, in[0].Score())
	})

	t.Run("empty input skips the scorer", func(t *testing.T) {
		scorer := &stubScorer{}
		ranked, err := New(scorer).Rank(ctx, "ref", nil, "job_title")
		require.NoError(t, err)
		assert.Empty(t, ranked)
		assert.Zero(t, scorer.calls)
	})

	t.Run("missing title field scores against empty string", func(t *testing.T) {
		in := []listing.Record{{"job_id": 1}}
		ranked, err := New(&TFIDFScorer{}).Rank(ctx, "golang engineer", in, "job_title")
		require.NoError(t, err)
		require.Len(t, ranked, 1)
		assert.Equal(t, 0.0, ranked[0].Score())
	})

	t.Run("scorer failure propagates", func(t *testing.T) {
		scorer := &stubScorer{err: errors.New("model offline")}
		_, err := New(scorer).Rank(ctx, "ref", records("a"), "job_title")
		assert.Error(t, err)
	})
}

func TestNewScorer(t *testing.T) {
	t.Run("default is tfidf", func(t *testing.T) {
		s, err := NewScorer("", nil)
		require.NoError(t, err)
		assert.Equal(t, "tfidf", s.Name())
	})

	t.Run("tfidf needs no embedder", func(t *testing.T) {
		s, err := NewScorer("tfidf", nil)
		require.NoError(t, err)
		assert.IsType(t, &TFIDFScorer{}, s)
	})

	t.Run("embedding requires an embedder", func(t *testing.T) {
		_, err := NewScorer("embedding", nil)
		assert.Error(t, err)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := NewScorer("levenshtein", nil)
		assert.Error(t, err)
	})
}
