package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/handlers"
)

func init() { Register(registerSites) }

func registerSites(r chi.Router, d deps.Deps) {
	guarded(r, d).Post("/api/sites/parse", handlers.ParseSites(d))
	mutating(r, d).Post("/api/restore", handlers.RestoreSites(d))
}
