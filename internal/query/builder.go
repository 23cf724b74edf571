// Package query composes the provider search query from extracted
// keyphrases and an optional location hint.
package query

import "strings"

// Build joins keyphrases with single spaces and appends the city when
// non-empty. An empty keyphrase list yields an empty or city-only string;
// that is valid provider input, not an error. No escaping is applied here,
// URL encoding happens in the provider transport.
func Build(keyphrases []string, city string) string {
	q := strings.Join(keyphrases, " ")
	if city != "" {
		if q == "" {
			return city
		}
		q += " " + city
	}
	return q
}
