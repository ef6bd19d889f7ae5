package seating

import (
	"strings"

	"github.com/avelara/seatsync/internal/model"
)

// minSuggestPrefix is the shortest prefix Suggest will scan for.
// Single-character queries would match most of a roster and invite
// needlessly broad scans from autocomplete widgets.
const minSuggestPrefix = 2

// normalizeName trims surrounding whitespace and case-folds a name
// for comparison.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve finds the first guest in candidates matching the free-text
// query.  A candidate matches when the normalized query is a
// substring of the normalized display name, or equals the normalized
// first name, last name, or "first last" concatenation.  Matching is
// first-match-wins over the slice in its given order; there is no
// ranking.  Returns false when the query is empty or nothing matches.
func Resolve(query string, candidates []model.Guest) (model.Guest, bool) {
	q := normalizeName(query)
	if q == "" {
		return model.Guest{}, false
	}
	for _, g := range candidates {
		full := normalizeName(g.DisplayName())
		first := normalizeName(g.FirstName)
		last := normalizeName(g.LastName)
		if strings.Contains(full, q) {
			return g, true
		}
		if q == first || q == last {
			return g, true
		}
		if first != "" && last != "" && q == first+" "+last {
			return g, true
		}
	}
	return model.Guest{}, false
}

// Suggest returns up to limit display names whose normalized form
// contains the normalized prefix, preserving candidate order.
// Prefixes shorter than two characters yield nothing.  Identical
// names are not deduplicated; the caller sees the roster as stored.
func Suggest(prefix string, candidates []model.Guest, limit int) []string {
	p := normalizeName(prefix)
	if len(p) < minSuggestPrefix || limit <= 0 {
		return nil
	}
	var out []string
	for _, g := range candidates {
		name := g.DisplayName()
		if strings.Contains(normalizeName(name), p) {
			out = append(out, name)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
