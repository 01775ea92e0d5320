// Package sources loads links from import files.
package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/sources/homepage"
)

// Load reads links from path. JSON files hold an exported link array;
// anything else is treated as a Homepage YAML file.
func Load(path string) ([]domain.Link, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadJSON(path, time.Now())
	}
	return homepage.NewLoader(path).Load()
}

// loadJSON decodes a link export. Entries without an id get the
// URL-derived id, entries without a creation time get now.
func loadJSON(path string, now time.Time) ([]domain.Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}

	var raw []domain.Link
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse links json: %w", err)
	}

	links := make([]domain.Link, 0, len(raw))
	for _, l := range raw {
		l.URL = strings.TrimSpace(l.URL)
		if l.URL == "" {
			continue
		}
		if l.ID == "" {
			l.ID = homepage.LinkID(l.URL)
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		links = append(links, l)
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("%w in %s", homepage.ErrNoLinks, path)
	}
	return links, nil
}
