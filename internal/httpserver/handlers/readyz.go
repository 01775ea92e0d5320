package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
	Links int  `json:"links"`
}

// Readyz reports ready once the local store has been loaded into the index.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		ready := d.Index.Loaded()
		if !ready {
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, readyzResponse{
			Ready: ready,
			Links: d.Index.Count(),
		})
	}
}
