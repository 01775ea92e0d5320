package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/httpserver/handlers"
)

func init() { Register("sync", registerSync, adminNetworks, knownHosts) }

func registerSync(r chi.Router, d deps.Deps) {
	r.Post("/api/sync", handlers.Sync(d))
}
