// Package rank scores job listings against a reference text and orders them
// by descending match score. Two interchangeable scoring strategies are
// provided: lexical TF-IDF cosine similarity and embedding cosine
// similarity; the strategy is selected once at startup.
package rank

import (
	"context"
	"fmt"

	"github.com/nikhilcherian/jobscout/internal/ai"
)

// Scorer computes a similarity in [0,1] between a reference text and each
// title, returned in title order.
type Scorer interface {
	Score(ctx context.Context, reference string, titles []string) ([]float64, error)
	Name() string
}

// NewScorer returns the scorer for the configured strategy name. The
// embedding strategy requires a non-nil embedder; "" selects the default
// TF-IDF strategy.
func NewScorer(strategy string, embedder ai.Embedder) (Scorer, error) {
	switch strategy {
	case "", "tfidf":
		return &TFIDFScorer{}, nil
	case "embedding":
		if embedder == nil {
			return nil, fmt.Errorf("embedding strategy requires an embedder")
		}
		return &EmbeddingScorer{embedder: embedder}, nil
	default:
		return nil, fmt.Errorf("unknown ranking strategy %q", strategy)
	}
}
