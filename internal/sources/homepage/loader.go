package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrNoLinks is returned when a file parses but yields no usable link
var ErrNoLinks = errors.New("no valid links found")

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a Homepage bookmarks.yaml or services.yaml file
type Loader struct {
	filePath string
	mapper   *Mapper
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		mapper:   NewMapper(),
	}
}

// Path returns the watched file path
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads the file and maps its entries to links.
// Both layouts are accepted: bookmarks.yaml is tried first, then services.yaml.
func (l *Loader) Load() ([]domain.Link, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}

	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	var bookmarks BookmarksConfig
	if err := yaml.Unmarshal(data, &bookmarks); err == nil {
		if links := l.mapper.MapBookmarks(bookmarks); len(links) > 0 {
			return links, nil
		}
	}

	var services ServicesConfig
	if err := yaml.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("failed to parse homepage yaml: %w", err)
	}

	links := l.mapper.MapServices(services)
	if len(links) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoLinks, l.filePath)
	}
	return links, nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
