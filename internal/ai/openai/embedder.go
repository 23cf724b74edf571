// Package openai implements ai.Embedder against any OpenAI-compatible
// embeddings API (Ollama, LocalAI, OpenAI itself).
package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/nikhilcherian/jobscout/internal/ai"
	"github.com/nikhilcherian/jobscout/pkg/config"
	"github.com/nikhilcherian/jobscout/pkg/metrics"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder wraps a langchaingo embedder behind the ai.Embedder interface.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder for the configured host and model.
// Local OpenAI-compatible services that skip authentication accept any
// non-empty token. A nil metrics skips latency recording.
func NewEmbedder(cfg config.AIConfig, m *metrics.Metrics) (*Embedder, error) {
	token := cfg.Token
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.EmbeddingHost),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder", "model", cfg.EmbeddingModel),
		metrics:  m,
	}, nil
}

// EmbedQuery generates an embedding for a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := e.embedder.EmbedQuery(ctx, text)
	e.observe(start)
	if err != nil {
		e.logger.Error("failed to embed query", "length", len(text), "error", err)
		return nil, err
	}
	return vec, nil
}

// EmbedDocuments generates embeddings for multiple texts in one batch.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	e.observe(start)
	if err != nil {
		e.logger.Error("failed to embed documents", "count", len(texts), "error", err)
		return nil, err
	}
	return vecs, nil
}

func (e *Embedder) observe(start time.Time) {
	if e.metrics != nil {
		e.metrics.EmbeddingLatency.Observe(time.Since(start).Seconds())
	}
}
