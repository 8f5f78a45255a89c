// internal/app/features/campaigns/routes.go
package campaigns

import (
	"github.com/go-chi/chi/v5"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auth"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/credentials"
)

// Routes mounts under /api/v1/campaign.
func Routes(h *Handler, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.Get)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.Require(credentials.Organization))
		pr.Post("/addCampaign", h.Create)
		pr.Patch("/{id}", h.Update)
	})
	return r
}
