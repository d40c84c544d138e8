// internal/app/features/registry/routes.go
package registry

import "github.com/go-chi/chi/v5"

// Routes returns the admin registry search routes, mounted under
// /api/admin/registry.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSearch)
	return r
}
