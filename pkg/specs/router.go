package specs

import (
	"github.com/go-chi/chi/v5"

	"github.com/brandworks/material-registry/pkg/authz"
)

// NewRouter creates a chi router with spec registry routes. Read routes are
// open to any authenticated role; mutations require admin.
func NewRouter(registry *Registry) chi.Router {
	r := chi.NewRouter()

	r.Get("/platforms", listPlatformsHandler())
	r.Route("/platforms/{platform}/slots", func(r chi.Router) {
		r.Get("/", listSlotsHandler(registry))
		r.Get("/{slot}", getSpecHandler(registry))

		r.Group(func(r chi.Router) {
			r.Use(authz.RequireRole(authz.RoleAdmin))
			r.Put("/{slot}", putSpecHandler(registry))
			r.Delete("/{slot}", deleteSpecHandler(registry))
		})
	})

	return r
}
