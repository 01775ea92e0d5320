package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/httpserver/mw"
	"github.com/MrSnakeDoc/hop/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
	// Guard builds a middleware once the dependencies are known.
	Guard func(d deps.Deps) Middleware
)

type entry struct {
	name   string
	reg    Registrar
	guards []Guard
}

var registry []entry

// Register a named registrar with optional guards applied to every route it mounts.
func Register(name string, reg Registrar, guards ...Guard) {
	registry = append(registry, entry{name: name, reg: reg, guards: guards})
}

// Called once from httpserver.NewRouter
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.guards) == 0 {
			e.reg(r, d)
		} else {
			mws := make([]Middleware, 0, len(e.guards))
			for _, g := range e.guards {
				mws = append(mws, g(d))
			}
			e.reg(r.With(mws...), d)
		}
		if d.Logger != nil {
			d.Logger.Debug("routes registered",
				logger.String("group", e.name),
				logger.Int("guards", len(e.guards)))
		}
	}
}

// adminNetworks restricts a group to AllowedCIDRS.
func adminNetworks(d deps.Deps) Middleware {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

// knownHosts restricts a group to AllowedHosts.
func knownHosts(d deps.Deps) Middleware {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}
