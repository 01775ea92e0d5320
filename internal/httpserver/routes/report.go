package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hop/internal/httpserver/handlers"
)

func init() { Register("report", registerReport, adminNetworks, knownHosts) }

func registerReport(r chi.Router, d deps.Deps) {
	r.Get("/api/report", handlers.Report(d))
	r.Get("/api/report/ws", handlers.ReportStream(d))
}
