package homepage

import (
	"testing"
	"time"
)

func fixedMapper() *Mapper {
	return &Mapper{now: func() time.Time { return time.Unix(100, 0) }}
}

func TestMapperMapServices(t *testing.T) {
	config := ServicesConfig{
		{
			"Infrastructure": []map[string]ServiceProps{
				{
					"AdGuard Home": {
						Icon:        "adguard-home.svg",
						Href:        "https://adguard.domain.ext",
						Description: "Network-wide ads blocking",
					},
				},
				{
					"Traefik": {
						Icon:        "traefik.svg",
						Href:        "https://traefik.domain.ext",
						Description: "Cloud Native Application Proxy",
					},
				},
			},
		},
	}

	links := fixedMapper().MapServices(config)
	if len(links) != 2 {
		t.Fatalf("MapServices() returned %v links, want 2", len(links))
	}

	got := links[0]
	if got.Description != "AdGuard Home Network-wide ads blocking Infrastructure" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.ID != LinkID("https://adguard.domain.ext") {
		t.Errorf("ID = %v, want URL-derived id", got.ID)
	}
	if !got.CreatedAt.Equal(time.Unix(100, 0)) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
	if got.NumAccessed != 0 || got.LastAccessedAt != nil || got.DeletedAt != nil {
		t.Errorf("imported link should be fresh, got %+v", got)
	}
}

func TestMapperMapServicesEmptyConfig(t *testing.T) {
	if links := NewMapper().MapServices(ServicesConfig{}); len(links) != 0 {
		t.Errorf("MapServices() with empty config returned %v links", len(links))
	}
}

func TestMapperMapServicesInvalidURL(t *testing.T) {
	config := ServicesConfig{
		{
			"Test": []map[string]ServiceProps{
				{"Invalid Service": {Href: "not-a-valid-url"}},
				{"Empty": {Href: ""}},
			},
		},
	}

	if links := NewMapper().MapServices(config); len(links) != 0 {
		t.Errorf("MapServices() should skip invalid URLs, got %v links", len(links))
	}
}

func TestMapperMapServicesMultipleGroups(t *testing.T) {
	config := ServicesConfig{
		{"Group1": []map[string]ServiceProps{{"Service1": {Href: "https://service1.example.com"}}}},
		{"Group2": []map[string]ServiceProps{{"Service2": {Href: "https://service2.example.com"}}}},
	}

	links := NewMapper().MapServices(config)
	if len(links) != 2 {
		t.Errorf("MapServices() returned %v links, want 2", len(links))
	}
}

func TestMapperMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Developer": []map[string][]BookmarkEntry{
				{"Github": {{Abbr: "GH", Href: "https://github.com/"}}},
				{"Same": {{Abbr: "same", Href: "https://same.example.com"}}},
				{"Empty": {}},
			},
		},
	}

	links := fixedMapper().MapBookmarks(config)
	if len(links) != 2 {
		t.Fatalf("MapBookmarks() returned %v links, want 2", len(links))
	}
	if links[1].Description != "Same Developer" {
		t.Errorf("abbr equal to name should not repeat, got %q", links[1].Description)
	}
}

func TestLinkIDStable(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"https://github.com", "https://github.com", true},
		{"https://github.com", " HTTPS://GitHub.com ", true},
		{"https://github.com", "https://gitlab.com", false},
	}

	for _, tt := range tests {
		if got := LinkID(tt.a) == LinkID(tt.b); got != tt.same {
			t.Errorf("LinkID(%q) == LinkID(%q) = %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
	if len(LinkID("https://github.com")) != 16 {
		t.Error("LinkID() should be 16 hex chars")
	}
}
