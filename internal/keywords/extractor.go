package keywords

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/nikhilcherian/jobscout/internal/ai"
)

// overfetchFactor compensates for candidates later discarded as duplicates
// or by the block-list.
const overfetchFactor = 4

// englishStopwords removes common English function words during candidate
// generation, before phrases are scored for relevance.
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "all": {},
	"also": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "can": {},
	"could": {}, "did": {}, "do": {}, "does": {}, "doing": {}, "down": {},
	"during": {}, "each": {}, "few": {}, "for": {}, "from": {}, "further": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {},
	"here": {}, "hers": {}, "him": {}, "his": {}, "how": {}, "i": {}, "if": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "just": {}, "like": {},
	"looking": {}, "me": {}, "more": {}, "most": {}, "my": {}, "no": {},
	"nor": {}, "not": {}, "now": {}, "of": {}, "off": {}, "on": {}, "once": {},
	"only": {}, "or": {}, "other": {}, "our": {}, "out": {}, "over": {},
	"own": {}, "same": {}, "she": {}, "should": {}, "so": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "too": {}, "under": {}, "until": {}, "up": {},
	"very": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "whom": {}, "why": {},
	"will": {}, "with": {}, "would": {}, "you": {}, "your": {}, "yours": {},
}

// Extractor produces the top keyphrases of a text, ranked by semantic
// relevance: candidate 1-2 token spans are embedded alongside the full text
// and scored by cosine similarity to it.
type Extractor struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewExtractor creates an extractor around the shared embedder.
func NewExtractor(embedder ai.Embedder) *Extractor {
	return &Extractor{
		embedder: embedder,
		logger:   slog.Default().With("component", "keyword-extractor"),
	}
}

// Extract returns up to topN keyphrases for text, lowercase and trimmed,
// de-duplicated, with block-listed phrases removed, ordered by descending
// relevance. Empty text and embedding failures both yield an empty list;
// extraction never returns an error to the caller.
func (e *Extractor) Extract(ctx context.Context, text string, topN int) []string {
	if strings.TrimSpace(text) == "" || topN <= 0 {
		return nil
	}

	candidates := candidateSpans(text)
	if len(candidates) == 0 {
		return nil
	}

	docVec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Warn("embedding document failed, degrading to no keyphrases", "error", err)
		return nil
	}
	candVecs, err := e.embedder.EmbedDocuments(ctx, candidates)
	if err != nil || len(candVecs) != len(candidates) {
		e.logger.Warn("embedding candidates failed, degrading to no keyphrases",
			"candidates", len(candidates), "error", err)
		return nil
	}

	type scored struct {
		phrase string
		score  float64
	}
	ranked := make([]scored, len(candidates))
	for i, cand := range candidates {
		ranked[i] = scored{phrase: cand, score: ai.Cosine(docVec, candVecs[i])}
	}
	// Stable keeps candidate generation order for equal scores, which makes
	// extraction deterministic for a fixed embedder.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit := topN * overfetchFactor
	if limit > len(ranked) {
		limit = len(ranked)
	}

	keyphrases := make([]string, 0, topN)
	seen := make(map[string]struct{}, limit)
	for _, cand := range ranked[:limit] {
		phrase := strings.TrimSpace(strings.ToLower(cand.phrase))
		if phrase == "" || Blocked(phrase) {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		keyphrases = append(keyphrases, phrase)
		if len(keyphrases) == topN {
			break
		}
	}
	return keyphrases
}

// candidateSpans generates unique 1-2 token spans over the stop-filtered
// token stream, in order of first appearance. Tokens keep '+', '#' and
// inner '.' so terms like "c++", "c#" and "node.js" survive.
func candidateSpans(text string) []string {
	tokens := tokenize(text)
	spans := make([]string, 0, len(tokens)*2)
	seen := make(map[string]struct{}, len(tokens)*2)
	add := func(span string) {
		if _, dup := seen[span]; dup {
			return
		}
		seen[span] = struct{}{}
		spans = append(spans, span)
	}
	for i, tok := range tokens {
		add(tok)
		if i+1 < len(tokens) {
			add(tok + " " + tokens[i+1])
		}
	}
	return spans
}

func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, ".")
		if len(word) < 2 {
			continue
		}
		if _, stop := englishStopwords[word]; stop {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
