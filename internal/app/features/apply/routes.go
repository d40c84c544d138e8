// internal/app/features/apply/routes.go
package apply

import (
	"github.com/go-chi/chi/v5"
	"github.com/trovehq/trovehub/internal/app/system/ratelimit"
)

// Routes mounts the wizard API. Writes are rate limited per client IP;
// pass nil to skip limiting (tests).
func Routes(h *Handler, writeLimiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeApplication)
	r.Group(func(r chi.Router) {
		if writeLimiter != nil {
			r.Use(writeLimiter.Middleware)
		}
		r.Post("/", h.HandlePost)
		r.Put("/", h.HandlePut)
	})
	return r
}
