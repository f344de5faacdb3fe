package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/handlers"
)

func init() { Register(registerBackup) }

func registerBackup(r chi.Router, d deps.Deps) {
	guarded(r, d).Get("/api/backup", handlers.ExportBackup(d))
	mutating(r, d).Post("/api/backup", handlers.ImportBackup(d))
}
