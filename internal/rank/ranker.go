package rank

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/nikhilcherian/jobscout/internal/listing"
)

// Ranker attaches a match score to each listing and orders the set by
// descending score.
type Ranker struct {
	scorer Scorer
	logger *slog.Logger
}

// New creates a Ranker around the given scoring strategy.
func New(scorer Scorer) *Ranker {
	return &Ranker{
		scorer: scorer,
		logger: slog.Default().With("component", "ranker", "strategy", scorer.Name()),
	}
}

// Rank scores every listing title against reference, writes the score
// (0-100, two decimals) onto the same record under "match_score", and
// returns the slice sorted by descending score. The sort is stable: equal
// scores keep the provider's original order. An empty input returns
// immediately without invoking the scorer. Listings missing the title field
// are scored against the empty string, never skipped; no score threshold is
// applied.
func (r *Ranker) Rank(ctx context.Context, reference string, listings []listing.Record, titleField string) ([]listing.Record, error) {
	if len(listings) == 0 {
		return listings, nil
	}

	titles := make([]string, len(listings))
	for i, rec := range listings {
		titles[i] = rec.String(titleField)
	}

	scores, err := r.scorer.Score(ctx, reference, titles)
	if err != nil {
		return nil, err
	}

	for i, rec := range listings {
		var s float64
		if i < len(scores) {
			s = scores[i]
		}
		rec[listing.MatchScoreField] = math.Round(s*100*100) / 100
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Score() > listings[j].Score()
	})

	r.logger.Debug("ranked listings", "count", len(listings), "top_score", listings[0].Score())
	return listings, nil
}
