// internal/app/features/ngos/routes.go
package ngos

import (
	"github.com/go-chi/chi/v5"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
)

// Routes mounts under /api/v1/ngo.
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.Require(credentials.Organization))
		pr.Post("/logout", h.Logout)
		pr.Patch("/update-details", h.UpdateDetails)
		pr.Patch("/update-avatar", h.UpdateAvatar)
		pr.Patch("/update-cover-image", h.UpdateCoverImage)
		pr.Get("/getDetails", h.GetDetails)
	})
	return r
}
