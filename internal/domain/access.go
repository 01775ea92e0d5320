package domain

import "time"

// RecordAccess returns a copy of store where link id has one more access at now.
// An unknown id is not an error: a selection racing a deletion or merge is
// expected, and the copy is returned unchanged.
func RecordAccess(store *Store, id string, now time.Time) *Store {
	next := store.Clone()
	l, ok := next.Get(id)
	if !ok {
		return next
	}
	next.Put(MarkAccessed(l, now))
	return next
}

// Import returns a copy of store with every link whose id is not yet known.
// Known ids are skipped, tombstones included, so imports never resurrect.
// Links whose URL is already live under another id are skipped too.
func Import(store *Store, links []Link) (*Store, int) {
	next := store.Clone()
	added := 0
	for _, l := range links {
		if _, ok := next.Get(l.ID); ok {
			continue
		}
		if !l.IsDeleted() {
			if _, dup := next.ActiveByURL(l.URL); dup {
				continue
			}
		}
		next.Put(l)
		added++
	}
	return next, added
}
