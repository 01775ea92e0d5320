package domain

import (
	"sort"
	"strings"
)

// ParseTerms splits a query into lower-cased, whitespace-separated terms.
// An empty query yields no terms, which matches everything.
func ParseTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Matches reports whether every term is a substring of the link URL or
// description (case-insensitive; OR across fields, AND across terms).
func Matches(l Link, terms []string) bool {
	url := strings.ToLower(l.URL)
	desc := strings.ToLower(l.Description)
	for _, term := range terms {
		if !strings.Contains(url, term) && !strings.Contains(desc, term) {
			return false
		}
	}
	return true
}

// Visible returns the non-deleted links matching query, most recently used
// first (never-accessed links rank by creation time). Ties keep store order.
// The result is a fresh slice on every call.
func Visible(store *Store, query string) []Link {
	terms := ParseTerms(query)

	out := make([]Link, 0, store.Len())
	for _, l := range store.Links() {
		// Skip tombstones
		if l.IsDeleted() {
			continue
		}
		if !Matches(l, terms) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RankTime().After(out[j].RankTime())
	})

	return out
}

// Resolve returns the visible links for query and, when exactly one
// matches, that link with ok set. Several matches leave the choice to the user.
func Resolve(store *Store, query string) (link Link, visible []Link, ok bool) {
	visible = Visible(store, query)
	if len(visible) != 1 {
		return Link{}, visible, false
	}
	return visible[0], visible, true
}
