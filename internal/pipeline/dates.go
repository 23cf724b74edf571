package pipeline

import "time"

// postedAtLayouts covers the provider's UTC timestamp with and without a
// zone designator.
var postedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// formatPostedAt renders a provider timestamp as "27 Aug 2025". Unparsable
// input falls back to the raw string, per listing and non-fatal.
func formatPostedAt(raw string) string {
	for _, layout := range postedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return raw
}
