package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/syncer"
)

type reportResponse struct {
	State    syncer.State       `json:"state"`
	Report   *domain.DiffReport `json:"report,omitempty"`
	Last     *domain.DiffReport `json:"last,omitempty"`
	LastSync string             `json:"last_sync"`
}

// Report returns the change report currently displayed, if any, along with
// the report of the last applied sync.
func Report(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := reportResponse{
			State:    syncer.StateIdle,
			LastSync: "never",
		}

		if current, showing := d.Notifier.Current(); showing {
			resp.State = syncer.StateShowing
			resp.Report = &current
		}
		if last, ok := d.Notifier.Last(); ok {
			resp.Last = &last
		}
		if t := d.Index.LastSync(); !t.IsZero() {
			resp.LastSync = t.UTC().Format(time.RFC3339)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
