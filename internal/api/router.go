package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/authservice"
	"github.com/starford/mannaz/internal/events"
	"github.com/starford/mannaz/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted. The /auth
// endpoints are public; everything else requires a valid bearer token and
// runs with the token's user id as the owner scope. broker may be nil to
// leave the events endpoint unmounted.
func NewRouter(auth *authservice.Service, notes *noteservice.Service, broker *events.Broker) chi.Router {
	h := NewHandler(auth, notes, broker)

	r := chi.NewRouter()

	// Credential endpoints.
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Owner-scoped endpoints.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(auth))

		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes/{id}", h.GetNote)
		r.Put("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)

		if broker != nil {
			r.Get("/events", h.Events)
		}
	})

	return r
}
