package routes

import (
	"net/http"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

func TestRegisterAll(t *testing.T) {
	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{Logger: logger.NewNop()})

	var got []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got = append(got, method+" "+route)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	want := []string{
		"GET /go",
		"GET /healthz",
		"GET /infra",
		"GET /readyz",
		"GET /api/report",
		"GET /api/report/ws",
		"POST /api/sync",
		"GET /api/links/",
		"POST /api/links/",
		"GET /api/links/{id}",
		"PUT /api/links/{id}",
		"DELETE /api/links/{id}",
		"POST /api/links/{id}/access",
	}

	seen := make(map[string]bool, len(got))
	for _, g := range got {
		seen[g] = true
	}
	for _, w := range want {
		if !seen[w] {
			sort.Strings(got)
			t.Errorf("route %q not registered; have %v", w, got)
		}
	}
}

func TestRegister_GroupNames(t *testing.T) {
	names := make(map[string]int, len(registry))
	for _, e := range registry {
		names[e.name]++
	}
	for _, n := range []string{"go", "health", "links", "readyz", "report", "sync"} {
		if names[n] != 1 {
			t.Errorf("group %q registered %d times, want 1", n, names[n])
		}
	}
}
