package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
)

const checkTimeout = 2 * time.Second

type componentStatus struct {
	OK         bool   `json:"ok"`
	Links      *int   `json:"links,omitempty"`
	Tombstones *int   `json:"tombstones,omitempty"`
	LastSync   string `json:"last_sync,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	SyncMode   string                     `json:"sync_mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		linksCount := d.Index.Count()
		lastSync := d.Index.LastSync()
		lastSyncStr := "never"
		if !lastSync.IsZero() {
			lastSyncStr = lastSync.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"index": {
				OK:       d.Index.Loaded(),
				Links:    &linksCount,
				LastSync: lastSyncStr,
			},
			"sqlite": checkLocal(r.Context(), d),
			"redis":  checkRemote(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			SyncMode:   determineSyncMode(components),
			Components: components,
		})
	}
}

func determineSyncMode(components map[string]componentStatus) string {
	if local, exists := components["sqlite"]; exists && !local.OK {
		return "critical" // changes cannot be persisted
	}
	if idx, exists := components["index"]; exists && !idx.OK {
		return "critical"
	}
	if remote, exists := components["redis"]; exists && !remote.OK {
		return "offline" // local-only, nothing synchronizes
	}
	return "synchronized"
}

func checkLocal(ctx context.Context, d deps.Deps) componentStatus {
	if d.Local == nil {
		return componentStatus{OK: false, Error: "database not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := d.Local.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkRemote(ctx context.Context, d deps.Deps) componentStatus {
	if d.Remote == nil {
		return componentStatus{
			OK:     false,
			Mode:   "offline",
			Impact: "sync-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := d.Remote.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "offline",
			Impact: "sync-disabled",
			Error:  "timeout",
		}
	}

	status := componentStatus{
		OK:     true,
		Mode:   "online",
		Impact: "sync-enabled",
	}
	if stats, err := d.Remote.Stats(ctx); err == nil {
		status.Links = &stats.Links
		status.Tombstones = &stats.Tombstones
	}
	return status
}
