package rank

import (
	"context"

	"github.com/nikhilcherian/jobscout/internal/ai"
)

// EmbeddingScorer scores each title as the cosine similarity between its
// embedding and the reference embedding, computed by the shared embedder.
// Negative cosine values are clamped to 0 so scores stay in [0,1].
type EmbeddingScorer struct {
	embedder ai.Embedder
}

var _ Scorer = (*EmbeddingScorer)(nil)

func (s *EmbeddingScorer) Name() string { return "embedding" }

func (s *EmbeddingScorer) Score(ctx context.Context, reference string, titles []string) ([]float64, error) {
	refVec, err := s.embedder.EmbedQuery(ctx, reference)
	if err != nil {
		return nil, err
	}
	titleVecs, err := s.embedder.EmbedDocuments(ctx, titles)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(titles))
	for i := range titles {
		if i >= len(titleVecs) {
			break
		}
		sim := ai.Cosine(refVec, titleVecs[i])
		if sim < 0 {
			sim = 0
		} else if sim > 1 {
			sim = 1
		}
		scores[i] = sim
	}
	return scores, nil
}
