package domain

// Store is the full record set, keyed by id.
// Insertion order is preserved: it is the tie-breaker for ranking and merge output.
//
// A Store is not safe for concurrent mutation. Pure operations in this package
// never mutate their inputs; they return new stores.
type Store struct {
	ids   []string
	links map[string]Link
}

// NewStore builds a store from links. A repeated id replaces the earlier
// record at its original position.
func NewStore(links ...Link) *Store {
	s := &Store{
		ids:   make([]string, 0, len(links)),
		links: make(map[string]Link, len(links)),
	}
	for _, l := range links {
		s.Put(l)
	}
	return s
}

// Len returns the number of records, tombstones included.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Get returns the record stored under id.
func (s *Store) Get(id string) (Link, bool) {
	if s == nil {
		return Link{}, false
	}
	l, ok := s.links[id]
	return l, ok
}

// Put inserts or replaces a record. Replacing keeps the original position.
func (s *Store) Put(l Link) {
	if _, exists := s.links[l.ID]; !exists {
		s.ids = append(s.ids, l.ID)
	}
	s.links[l.ID] = l
}

// Links returns all records in store order.
func (s *Store) Links() []Link {
	if s == nil {
		return nil
	}
	out := make([]Link, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.links[id])
	}
	return out
}

// IDs returns record ids in store order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// ActiveCount returns the number of records without a tombstone.
func (s *Store) ActiveCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, l := range s.links {
		if !l.IsDeleted() {
			n++
		}
	}
	return n
}

// ActiveByURL returns the live link whose normalized URL equals url's.
// Live URLs are unique within a local store.
func (s *Store) ActiveByURL(url string) (Link, bool) {
	key := NormalizeURL(url)
	if s == nil || key == "" {
		return Link{}, false
	}
	for _, id := range s.ids {
		l := s.links[id]
		if !l.IsDeleted() && l.NormalizedURL() == key {
			return l, true
		}
	}
	return Link{}, false
}

// Clone returns an independent copy of the store.
// Links are values; their timestamp pointers are never written through.
func (s *Store) Clone() *Store {
	if s == nil {
		return NewStore()
	}
	c := &Store{
		ids:   make([]string, len(s.ids)),
		links: make(map[string]Link, len(s.links)),
	}
	copy(c.ids, s.ids)
	for id, l := range s.links {
		c.links[id] = l
	}
	return c
}

// Equal reports whether two stores hold the same records in the same order.
func (s *Store) Equal(o *Store) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i, id := range s.IDs() {
		if o.ids[i] != id {
			return false
		}
		if !s.links[id].Equal(o.links[id]) {
			return false
		}
	}
	return true
}

// SameRecords reports whether two stores hold the same records, in any order.
func (s *Store) SameRecords(o *Store) bool {
	if s.Len() != o.Len() {
		return false
	}
	for id, l := range s.links {
		other, ok := o.links[id]
		if !ok || !l.Equal(other) {
			return false
		}
	}
	return true
}
