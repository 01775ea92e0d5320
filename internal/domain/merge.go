package domain

import "time"

// DiffReport summarizes what one merge changed on each side.
// It is ephemeral: never persisted, replaced by the next merge.
type DiffReport struct {
	NewLocal      int `json:"newLocal"`      // only local, to be pushed
	NewRemote     int `json:"newRemote"`     // only remote, pulled in
	DroppedLocal  int `json:"droppedLocal"`  // local versions superseded or deduped away
	DroppedRemote int `json:"droppedRemote"` // remote versions superseded or deduped away
}

// IsZero reports whether the merge changed nothing.
func (r DiffReport) IsZero() bool {
	return r == DiffReport{}
}

// dedupTombstoneDelay places a dedup tombstone strictly after the loser's
// last activity so it wins last-writer-wins on every replica.
const dedupTombstoneDelay = time.Millisecond

type side int

const (
	sideLocal side = iota
	sideRemote
)

// provenance tracks, per merged record, which side supplied it and
// whether it was counted as new.
type provenance struct {
	origin side
	isNew  bool
}

// Merge reconciles a local and a remote store into one consistent store.
//
// Per id: one-sided records are kept (local) or adopted (remote); records
// present on both sides are resolved by last-writer-wins on ActivityTime,
// local winning exact ties. Non-deleted records sharing a normalized URL
// are then collapsed into one, whichever side they came from.
//
// Merge never mutates its inputs and never fails.
func Merge(local, remote *Store) (*Store, DiffReport) {
	merged := NewStore()
	prov := make(map[string]provenance, local.Len()+remote.Len())
	var report DiffReport

	for _, l := range local.Links() {
		r, ok := remote.Get(l.ID)
		if !ok {
			merged.Put(l)
			prov[l.ID] = provenance{origin: sideLocal, isNew: true}
			report.NewLocal++
			continue
		}

		winner, origin := resolve(l, r)
		merged.Put(winner)
		prov[l.ID] = provenance{origin: origin}

		if l.Equal(r) {
			continue
		}
		if origin == sideRemote {
			report.DroppedLocal++
		} else {
			report.DroppedRemote++
		}
	}

	for _, r := range remote.Links() {
		if _, ok := local.Get(r.ID); ok {
			continue
		}
		merged.Put(r)
		prov[r.ID] = provenance{origin: sideRemote, isNew: true}
		report.NewRemote++
	}

	dedupByURL(merged, prov, &report)

	return merged, report
}

// resolve picks the winning version of a record present on both sides.
func resolve(local, remote Link) (Link, side) {
	if remote.ActivityTime().After(local.ActivityTime()) {
		return remote, sideRemote
	}
	return local, sideLocal
}

// dedupByURL collapses active records sharing a normalized URL. Losers are
// tombstoned, not removed, so the decision propagates on the next sync
// instead of resurrecting.
func dedupByURL(merged *Store, prov map[string]provenance, report *DiffReport) {
	groups := make(map[string][]string)
	var keys []string

	for _, l := range merged.Links() {
		if l.IsDeleted() {
			continue
		}
		key := l.NormalizedURL()
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], l.ID)
	}

	for _, key := range keys {
		ids := groups[key]
		if len(ids) < 2 {
			continue
		}

		keep := ids[0]
		for _, id := range ids[1:] {
			if preferred(merged.links[id], merged.links[keep]) {
				keep = id
			}
		}

		for _, id := range ids {
			if id == keep {
				continue
			}
			loser := merged.links[id]
			merged.Put(MarkDeleted(loser, loser.ActivityTime().Add(dedupTombstoneDelay)))

			p := prov[id]
			switch p.origin {
			case sideLocal:
				if p.isNew {
					report.NewLocal--
				}
				report.DroppedLocal++
			case sideRemote:
				if p.isNew {
					report.NewRemote--
				}
				report.DroppedRemote++
			}
		}
	}
}

// preferred reports whether a should survive deduplication over b:
// more accesses first, then the more recent access. Ties keep b.
func preferred(a, b Link) bool {
	if a.NumAccessed != b.NumAccessed {
		return a.NumAccessed > b.NumAccessed
	}
	return lastAccessed(a).After(lastAccessed(b))
}

func lastAccessed(l Link) time.Time {
	if l.LastAccessedAt == nil {
		return time.Time{}
	}
	return *l.LastAccessedAt
}
