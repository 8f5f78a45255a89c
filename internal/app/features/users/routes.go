// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
)

// Routes mounts under /api/v1/user.
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.Require(credentials.Individual))
		pr.Get("/logout", h.Logout)
		pr.Patch("/update-details", h.UpdateDetails)
		pr.Patch("/update-avatar", h.UpdateAvatar)
		pr.Get("/getDetails", h.GetDetails)
	})
	return r
}
