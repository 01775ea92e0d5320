package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidLink is returned when a link fails validation (ex: blank URL).
	ErrInvalidLink = errors.New("invalid link")
	// ErrLinkNotFound is returned when a link id is not present in a store.
	ErrLinkNotFound = errors.New("link not found")
	// ErrDuplicateURL is returned when another live link already has the URL.
	ErrDuplicateURL = errors.New("link with this URL already exists")
)

// Link represents a single bookmark the user can jump to.
//
// Links are never physically removed by normal flow: deletion sets DeletedAt
// so that the deletion itself can be synchronized.
type Link struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier.
	// Random UUID for links created by hand, URL hash for imported links.
	ID string

	// ─────────────────────────────
	// Functional description
	// ─────────────────────────────

	// URL is the destination to redirect to.
	// Example: https://github.com
	URL string

	// Description is a free-text label used for matching.
	Description string

	// ─────────────────────────────
	// Metadata & learning
	// ─────────────────────────────

	// CreatedAt is the first time the link was created.
	CreatedAt time.Time

	// LastAccessedAt is updated every time the link is selected.
	// Nil until the first access.
	LastAccessedAt *time.Time

	// NumAccessed counts selections.
	NumAccessed int64

	// ─────────────────────────────
	// Liveness
	// ─────────────────────────────

	// DeletedAt marks the link as soft-deleted (tombstone).
	DeletedAt *time.Time
}

// NewLink creates a fresh link with a random id.
func NewLink(url, description string, now time.Time) (Link, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Link{}, fmt.Errorf("%w: empty URL", ErrInvalidLink)
	}

	return Link{
		ID:          uuid.NewString(),
		URL:         url,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}, nil
}

// IsDeleted reports whether the link carries a tombstone.
func (l Link) IsDeleted() bool {
	return l.DeletedAt != nil
}

// RankTime is the recency key used for ordering:
// LastAccessedAt when present, CreatedAt otherwise.
func (l Link) RankTime() time.Time {
	if l.LastAccessedAt != nil {
		return *l.LastAccessedAt
	}
	return l.CreatedAt
}

// ActivityTime is the most recent meaningful timestamp of the link,
// used for last-writer-wins conflict resolution.
// Zero (missing or malformed) timestamps compare as the lowest value.
func (l Link) ActivityTime() time.Time {
	t := l.RankTime()
	if l.DeletedAt != nil && l.DeletedAt.After(t) {
		t = *l.DeletedAt
	}
	return t
}

// NormalizedURL is the key used to detect duplicate links.
func (l Link) NormalizedURL() string {
	return NormalizeURL(l.URL)
}

// NormalizeURL lower-cases and trims a URL for duplicate detection.
func NormalizeURL(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}

// AbsoluteURL turns a stored URL into one that can be requested or
// redirected to. Links saved without a scheme ("github.com") default to https.
func AbsoluteURL(url string) string {
	url = strings.TrimSpace(url)
	if strings.Contains(url, "://") {
		return url
	}
	return "https://" + strings.TrimPrefix(url, "//")
}

// MarkAccessed returns a copy of the link with one more access recorded at now.
// now is clamped to CreatedAt so that CreatedAt <= LastAccessedAt always holds.
func MarkAccessed(l Link, now time.Time) Link {
	if now.Before(l.CreatedAt) {
		now = l.CreatedAt
	}
	l.LastAccessedAt = &now
	l.NumAccessed++
	return l
}

// MarkDeleted returns a tombstoned copy of the link.
func MarkDeleted(l Link, now time.Time) Link {
	l.DeletedAt = &now
	return l
}

// Edit returns a copy of the link with a new URL and description.
func Edit(l Link, url, description string) (Link, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Link{}, fmt.Errorf("%w: empty URL", ErrInvalidLink)
	}
	l.URL = url
	l.Description = strings.TrimSpace(description)
	return l, nil
}

// Equal reports whether two links carry the same data.
func (l Link) Equal(o Link) bool {
	return l.ID == o.ID &&
		l.URL == o.URL &&
		l.Description == o.Description &&
		l.CreatedAt.Equal(o.CreatedAt) &&
		l.NumAccessed == o.NumAccessed &&
		timePtrEqual(l.LastAccessedAt, o.LastAccessedAt) &&
		timePtrEqual(l.DeletedAt, o.DeletedAt)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
