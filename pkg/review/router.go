package review

import (
	"github.com/go-chi/chi/v5"

	"github.com/brandworks/material-registry/pkg/authz"
)

// NewRouter creates a chi router with the material lifecycle API routes.
// Role enforcement beyond coarse route gating lives in the engine's
// authorization policy; the audit ledger read surface is admin only.
func NewRouter(engine *Engine) chi.Router {
	r := chi.NewRouter()

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", createProjectHandler(engine))
		r.Get("/", listProjectsHandler(engine))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getProjectHandler(engine))
			r.Patch("/status", updateProjectStatusHandler(engine))
			r.Put("/reviewers", assignReviewersHandler(engine))
			r.Get("/stats", projectStatsHandler(engine))
			r.Get("/materials", listProjectMaterialsHandler(engine))
		})
	})

	r.Route("/materials", func(r chi.Router) {
		r.Post("/", uploadMaterialHandler(engine))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", getMaterialHandler(engine))
			r.Post("/status", changeMaterialStatusHandler(engine))
			r.Post("/rollback", rollbackMaterialHandler(engine))
			r.Get("/versions", listVersionsHandler(engine))
			r.Get("/approvals", listMaterialApprovalsHandler(engine))
			r.Get("/history", materialHistoryHandler(engine))
		})
	})

	r.Route("/approvals", func(r chi.Router) {
		r.Get("/pending", pendingApprovalsHandler(engine))
		r.Post("/{id}/approve", resolveApprovalHandler(engine, true))
		r.Post("/{id}/reject", resolveApprovalHandler(engine, false))
	})

	r.Get("/dashboard/stats", dashboardStatsHandler(engine))

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireRole(authz.RoleAdmin))
		r.Get("/audit", listAuditHandler(engine))
		r.Get("/audit/entity/{type}/{id}", entityAuditHandler(engine))
	})

	return r
}
