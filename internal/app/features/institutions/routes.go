// internal/app/features/institutions/routes.go
package institutions

import "github.com/go-chi/chi/v5"

// Routes returns the admin institution directory routes, mounted under
// /api/admin/institutions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeInstitution)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
