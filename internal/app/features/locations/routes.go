// internal/app/features/locations/routes.go
package locations

import "github.com/go-chi/chi/v5"

// Routes returns the lost & found location routes, mounted under
// /api/locations.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeLocation)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
