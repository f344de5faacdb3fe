package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/handlers"
)

func init() { Register(registerProfiles) }

func registerProfiles(r chi.Router, d deps.Deps) {
	read := guarded(r, d)
	read.Get("/api/profiles", handlers.ListProfiles(d))
	read.Get("/api/profiles/{id}", handlers.GetProfile(d))
	read.Get("/api/settings/default-mode", handlers.GetDefaultMode(d))

	write := mutating(r, d)
	write.Post("/api/profiles", handlers.CreateProfile(d))
	write.Post("/api/profiles/detect", handlers.DetectProfiles(d))
	write.Put("/api/profiles/{id}", handlers.UpdateProfile(d))
	write.Delete("/api/profiles/{id}", handlers.DeleteProfile(d))
	write.Put("/api/settings/default-mode", handlers.SetDefaultMode(d))
}
