// Package listing defines the job listing record exchanged between the
// provider client, the ranker, and the pipeline.
package listing

// Record is a single job listing as returned by the provider. All provider
// fields are passed through unchanged; the pipeline enriches the same map in
// place with a match score, a source tag, and a formatted posting date.
// Records are request-local and never shared across requests.
type Record map[string]any

// Enrichment fields added by the ranking pipeline.
const (
	MatchScoreField = "match_score"
	SourceField     = "source"
	DatePostedField = "date_posted"
)

// String returns the string value of a field, or "" when the field is
// missing or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Score returns the match score previously stored on the record, or 0.
func (r Record) Score() float64 {
	switch v := r[MatchScoreField].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		return 0
	}
}
