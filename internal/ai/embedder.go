// Package ai defines the embedding abstraction shared by keyphrase
// extraction and embedding-based ranking. The concrete embedder is
// constructed once at startup and shared read-only across requests.
package ai

import "context"

// Embedder generates dense vector embeddings for text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedQuery generates an embedding for a single text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates embeddings for multiple texts in one batch,
	// returned in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
