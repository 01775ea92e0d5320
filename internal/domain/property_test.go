package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"
)

const propertyRounds = 200

var (
	genURLs  = []string{"github.com", "GitHub.com/", "gitlab.com", "go.dev/doc", "docs.rs", "hub.docker.com", "news.ycombinator.com"}
	genWords = []string{"code", "git", "docs", "hub", "go", "news", "rust", ""}
)

// genLink builds a link whose timestamps respect CreatedAt <= LastAccessedAt.
func genLink(r *rand.Rand, id string) Link {
	created := at(int64(r.Intn(100)))
	l := Link{
		ID:          id,
		URL:         genURLs[r.Intn(len(genURLs))],
		Description: strings.TrimSpace(genWords[r.Intn(len(genWords))] + " " + genWords[r.Intn(len(genWords))]),
		CreatedAt:   created,
	}
	if r.Intn(2) == 0 {
		l.NumAccessed = int64(1 + r.Intn(5))
		l.LastAccessedAt = ptr(created.Add(time.Duration(r.Intn(100)) * time.Second))
	}
	if r.Intn(4) == 0 {
		l.DeletedAt = ptr(created.Add(time.Duration(r.Intn(200)) * time.Second))
	}
	return l
}

// genStore builds a store of up to n links with ids drawn from a small pool,
// so that two generated stores share records. Live URLs are kept unique, as
// the local store guarantees.
func genStore(r *rand.Rand, n int) *Store {
	s := NewStore()
	live := make(map[string]bool)
	for i := 0; i < n; i++ {
		l := genLink(r, fmt.Sprintf("id-%d", r.Intn(2*n+1)))
		if _, ok := s.Get(l.ID); ok {
			continue
		}
		if !l.IsDeleted() && live[l.NormalizedURL()] {
			l.DeletedAt = ptr(l.ActivityTime().Add(time.Second))
		}
		if !l.IsDeleted() {
			live[l.NormalizedURL()] = true
		}
		s.Put(l)
	}
	return s
}

func genQuery(r *rand.Rand) string {
	var terms []string
	for i := r.Intn(3); i > 0; i-- {
		w := genWords[r.Intn(len(genWords))]
		if r.Intn(2) == 0 {
			w = strings.ToUpper(w)
		}
		terms = append(terms, w)
	}
	return strings.Join(terms, " ")
}

func positions(s *Store) map[string]int {
	pos := make(map[string]int, s.Len())
	for i, id := range s.IDs() {
		pos[id] = i
	}
	return pos
}

func TestVisible_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < propertyRounds; round++ {
		s := genStore(r, 1+r.Intn(12))
		query := genQuery(r)
		terms := strings.Fields(strings.ToLower(query))
		got := Visible(s, query)
		pos := positions(s)

		want := 0
		for _, l := range s.Links() {
			if l.IsDeleted() {
				continue
			}
			hit := true
			for _, term := range terms {
				if !strings.Contains(strings.ToLower(l.URL), term) && !strings.Contains(strings.ToLower(l.Description), term) {
					hit = false
				}
			}
			if hit {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("round %d: Visible(%q) returned %d links, want %d", round, query, len(got), want)
		}

		for i, l := range got {
			if l.IsDeleted() {
				t.Fatalf("round %d: Visible(%q) returned tombstone %s", round, query, l.ID)
			}
			if !Matches(l, terms) {
				t.Fatalf("round %d: Visible(%q) returned non-matching %s", round, query, l.ID)
			}
			if i == 0 {
				continue
			}
			prev := got[i-1]
			if prev.RankTime().Before(l.RankTime()) {
				t.Fatalf("round %d: %s ranked before more recent %s", round, prev.ID, l.ID)
			}
			if prev.RankTime().Equal(l.RankTime()) && pos[prev.ID] > pos[l.ID] {
				t.Fatalf("round %d: tie between %s and %s broke store order", round, prev.ID, l.ID)
			}
		}

		link, visible, ok := Resolve(s, query)
		if ok != (len(visible) == 1) {
			t.Fatalf("round %d: Resolve(%q) ok = %v with %d matches", round, query, ok, len(visible))
		}
		if ok && link.ID != visible[0].ID {
			t.Fatalf("round %d: Resolve(%q) = %s, want %s", round, query, link.ID, visible[0].ID)
		}
	}
}

func TestMerge_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(11))

	for round := 0; round < propertyRounds; round++ {
		local := genStore(r, 1+r.Intn(10))
		remote := genStore(r, 1+r.Intn(10))

		if m, report := Merge(local, local); !report.IsZero() || !m.Equal(local) {
			t.Fatalf("round %d: Merge(S, S) = %+v, report %+v; want S unchanged", round, m.IDs(), report)
		}

		merged, _ := Merge(local, remote)

		for _, l := range merged.Links() {
			// A record never comes out older than either input
			for _, in := range []*Store{local, remote} {
				if orig, ok := in.Get(l.ID); ok && l.ActivityTime().Before(orig.ActivityTime()) {
					t.Fatalf("round %d: %s went back from %v to %v", round, l.ID, orig.ActivityTime(), l.ActivityTime())
				}
			}

			lo, inLocal := local.Get(l.ID)
			re, inRemote := remote.Get(l.ID)
			if inLocal && inRemote && lo.IsDeleted() && re.IsDeleted() && !l.IsDeleted() {
				t.Fatalf("round %d: %s deleted on both sides was resurrected", round, l.ID)
			}
		}

		seen := make(map[string]string)
		for _, l := range merged.Links() {
			if l.IsDeleted() {
				continue
			}
			if other, dup := seen[l.NormalizedURL()]; dup {
				t.Fatalf("round %d: %s and %s both live for %q", round, other, l.ID, l.NormalizedURL())
			}
			seen[l.NormalizedURL()] = l.ID
		}

		again, report := Merge(merged, merged)
		if !report.IsZero() || !again.Equal(merged) {
			t.Fatalf("round %d: merging a merge result again reported %+v", round, report)
		}
	}
}
