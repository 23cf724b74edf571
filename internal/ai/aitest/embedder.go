// Package aitest provides a deterministic in-memory ai.Embedder for tests.
package aitest

import (
	"context"
	"hash/fnv"
)

// Embedder is a test double for ai.Embedder. Behavior can be overridden via
// the function fields; the default produces deterministic vectors derived
// from a hash of the input text, so identical texts always embed identically.
type Embedder struct {
	EmbedQueryFunc     func(ctx context.Context, text string) ([]float32, error)
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	calls int
}

// NewEmbedder creates a mock embedder with default deterministic behavior.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// EmbedQuery returns a deterministic vector for text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.EmbedQueryFunc != nil {
		return e.EmbedQueryFunc(ctx, text)
	}
	return deterministicVector(text, 64), nil
}

// EmbedDocuments returns deterministic vectors for each text.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.EmbedDocumentsFunc != nil {
		return e.EmbedDocumentsFunc(ctx, texts)
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = deterministicVector(text, 64)
	}
	return vecs, nil
}

// Calls returns the number of embed invocations.
func (e *Embedder) Calls() int {
	return e.calls
}

// deterministicVector derives a pseudo-random unit-ish vector from an FNV
// hash of the text, so the same text always produces the same vector.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%2000)/1000.0 - 1.0
	}
	return vec
}
