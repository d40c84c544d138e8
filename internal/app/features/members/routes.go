// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Routes returns the member roster routes, mounted under /api/members.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeMember)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
