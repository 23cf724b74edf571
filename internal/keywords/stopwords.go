// Package keywords extracts salient keyphrases from free-text job
// descriptions using embedding-based phrase relevance, filtered through a
// block-list of low-information competency terms.
package keywords

import "strings"

// blocklist holds generic competency and soft-skill terms that carry no
// search value in a job query. A keyphrase is discarded when any of its
// tokens matches an entry.
var blocklist = map[string]struct{}{
	"know": {}, "knowledge": {}, "skill": {}, "skills": {},
	"ability": {}, "abilities": {}, "experience": {}, "experienced": {},
	"working": {}, "work": {}, "works": {}, "good": {}, "strong": {},
	"excellent": {}, "motivated": {}, "driven": {}, "passionate": {},
	"dedicated": {}, "committed": {}, "innovative": {}, "creative": {},
	"responsible": {}, "team": {}, "player": {}, "focused": {},
}

// Blocked reports whether any whitespace-delimited token of phrase matches
// the block-list, case-insensitively. Matching is whole-token: "teamwork"
// is not blocked even though "team" is.
func Blocked(phrase string) bool {
	for _, tok := range strings.Fields(strings.ToLower(phrase)) {
		if _, ok := blocklist[tok]; ok {
			return true
		}
	}
	return false
}
