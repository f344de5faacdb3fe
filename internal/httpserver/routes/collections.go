package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/handlers"
)

func init() { Register(registerCollections) }

func registerCollections(r chi.Router, d deps.Deps) {
	read := guarded(r, d)
	read.Get("/api/collections", handlers.ListCollections(d))
	read.Get("/api/collections/{id}", handlers.GetCollection(d))
	read.Get("/api/collections/{id}/text", handlers.CollectionText(d))
	read.Get("/api/stats", handlers.RestoreStats(d))

	write := mutating(r, d)
	write.Post("/api/collections", handlers.CreateCollection(d))
	write.Put("/api/collections/{id}", handlers.UpdateCollection(d))
	write.Delete("/api/collections/{id}", handlers.DeleteCollection(d))
	write.Post("/api/collections/{id}/restore", handlers.RestoreCollection(d))
}
