package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
)

// Mapper converts Homepage entries to links
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapServices converts services.yaml groups to links.
// The description carries the service name, its description and its group
// so that all three are searchable.
func (m *Mapper) MapServices(config ServicesConfig) []domain.Link {
	var links []domain.Link
	now := m.now()

	for _, groupMap := range config {
		for _, group := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[group] {
				for _, name := range sortedKeys(serviceMap) {
					props := serviceMap[name]
					if !validHref(props.Href) {
						continue
					}
					links = append(links, newImported(props.Href, describe(name, props.Description, group), now))
				}
			}
		}
	}

	return links
}

// MapBookmarks converts bookmarks.yaml categories to links
func (m *Mapper) MapBookmarks(config BookmarksConfig) []domain.Link {
	var links []domain.Link
	now := m.now()

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					// Each bookmark has a list with a single entry
					if len(entries) == 0 || !validHref(entries[0].Href) {
						continue
					}
					entry := entries[0]

					abbr := entry.Abbr
					if strings.EqualFold(abbr, name) {
						abbr = ""
					}
					links = append(links, newImported(entry.Href, describe(name, abbr, categoryName), now))
				}
			}
		}
	}

	return links
}

// LinkID derives a stable id from a URL (SHA-256, 16 hex chars).
// The same URL always produces the same id, so re-importing is a no-op.
func LinkID(href string) string {
	hash := sha256.Sum256([]byte(domain.NormalizeURL(href)))
	return hex.EncodeToString(hash[:])[:16]
}

func newImported(href, description string, now time.Time) domain.Link {
	href = strings.TrimSpace(href)
	return domain.Link{
		ID:          LinkID(href),
		URL:         href,
		Description: description,
		CreatedAt:   now,
	}
}

func validHref(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func describe(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
