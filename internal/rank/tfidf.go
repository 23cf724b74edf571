package rank

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// TFIDFScorer builds a term-frequency/inverse-document-frequency vector
// space over {reference, title_1..title_k} per call and scores each title as
// the cosine similarity between its vector and the reference vector.
// Smoothed IDF (ln((1+n)/(1+df)) + 1) with L2-normalised vectors, so scores
// land in [0,1]. The scorer is stateless and never fails.
type TFIDFScorer struct{}

var _ Scorer = (*TFIDFScorer)(nil)

func (s *TFIDFScorer) Name() string { return "tfidf" }

func (s *TFIDFScorer) Score(_ context.Context, reference string, titles []string) ([]float64, error) {
	docs := make([][]string, 0, len(titles)+1)
	docs = append(docs, terms(reference))
	for _, title := range titles {
		docs = append(docs, terms(title))
	}

	// Document frequency over the whole corpus, reference included.
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, t := range doc {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for t, f := range df {
		idf[t] = math.Log((1+n)/(1+float64(f))) + 1
	}

	ref := vectorize(docs[0], idf)
	scores := make([]float64, len(titles))
	for i := range titles {
		scores[i] = dot(ref, vectorize(docs[i+1], idf))
	}
	return scores, nil
}

// vectorize builds the L2-normalised tf-idf vector of a document.
func vectorize(doc []string, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(doc))
	for _, t := range doc {
		vec[t] += idf[t]
	}
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for t := range vec {
		vec[t] /= norm
	}
	return vec
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for t, w := range a {
		sum += w * b[t]
	}
	return sum
}

// terms lower-cases and splits on non-alphanumeric boundaries, keeping
// tokens of two or more characters.
func terms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= 2 {
			out = append(out, w)
		}
	}
	return out
}
