// internal/app/features/agents/routes.go
package agents

import "github.com/go-chi/chi/v5"

// Routes returns the agent roster routes, mounted under /api/agents.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeAgent)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
