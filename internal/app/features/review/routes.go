// internal/app/features/review/routes.go
package review

import "github.com/go-chi/chi/v5"

// Routes returns the admin application review routes, mounted under
// /api/admin/applications.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeApplication)
	r.Post("/{id}/review", h.HandleStartReview)
	r.Post("/{id}/approve", h.HandleApprove)
	r.Post("/{id}/reject", h.HandleReject)
	r.Post("/{id}/reopen", h.HandleReopen)

	return r
}
