package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brandworks/material-registry/pkg/assetcheck"
	"github.com/brandworks/material-registry/pkg/authz"
	"github.com/brandworks/material-registry/pkg/specs"
)

// maxUploadBytes caps multipart memory buffering; spec ceilings are
// enforced separately by the validator.
const maxUploadBytes = 32 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps engine errors to HTTP responses. Validation
// rejections and transition errors keep their structured payloads so
// clients can self-correct.
func writeEngineError(w http.ResponseWriter, err error) {
	if rej, ok := assetcheck.AsRejection(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"rejection": rej})
		return
	}
	var transition *TransitionError
	if errors.As(err, &transition) {
		writeJSON(w, http.StatusConflict, map[string]any{"transition": transition})
		return
	}
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrProjectNotFound),
		errors.Is(err, ErrMaterialNotFound),
		errors.Is(err, ErrVersionNotFound),
		errors.Is(err, ErrApprovalNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func identity(r *http.Request) authz.Identity {
	id, _ := authz.IdentityFromContext(r.Context())
	return id
}

// createProjectHandler returns a handler that creates a project.
func createProjectHandler(engine *Engine) http.HandlerFunc {
	type request struct {
		Name      string   `json:"name"`
		Company   string   `json:"company"`
		AppName   string   `json:"appName"`
		Deadline  string   `json:"deadline,omitempty"`
		Reviewers []string `json:"reviewers,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		var deadline *time.Time
		if req.Deadline != "" {
			t, err := time.Parse(time.RFC3339, req.Deadline)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid deadline: %v", err))
				return
			}
			deadline = &t
		}

		project, err := engine.CreateProject(r.Context(), CreateProjectRequest{
			Name:      req.Name,
			Company:   req.Company,
			AppName:   req.AppName,
			Deadline:  deadline,
			Reviewers: req.Reviewers,
			Identity:  identity(r),
		})
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				writeEngineError(w, err)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, project)
	}
}

// listProjectsHandler returns a handler that lists projects.
func listProjectsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := ProjectStatus(r.URL.Query().Get("status"))
		pageSize := intQuery(r, "pageSize")
		pageToken := r.URL.Query().Get("pageToken")

		records, nextToken, total, err := engine.Projects().List(status, pageSize, pageToken)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"projects":      records,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

// getProjectHandler returns a handler that retrieves one project.
func getProjectHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := engine.Projects().Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if project == nil {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

// updateProjectStatusHandler returns a handler that moves a project to a
// new status.
func updateProjectStatusHandler(engine *Engine) http.HandlerFunc {
	type request struct {
		Status ProjectStatus `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		project, err := engine.UpdateProjectStatus(r.Context(), chi.URLParam(r, "id"), req.Status, identity(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

// assignReviewersHandler returns a handler that replaces a project's
// reviewer set. Admin only, enforced by the engine.
func assignReviewersHandler(engine *Engine) http.HandlerFunc {
	type request struct {
		Reviewers []string `json:"reviewers"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		project, err := engine.AssignReviewers(r.Context(), chi.URLParam(r, "id"), req.Reviewers, identity(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

// projectStatsHandler returns a handler that computes project progress.
func projectStatsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := engine.ProjectStats(chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// listProjectMaterialsHandler returns a handler that lists a project's
// materials with optional status/platform filters.
func listProjectMaterialsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		materials, err := engine.Materials().ListByProject(
			chi.URLParam(r, "id"),
			MaterialStatus(r.URL.Query().Get("status")),
			r.URL.Query().Get("platform"),
		)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"materials": materials})
	}
}

// uploadMaterialHandler returns a handler for multipart material uploads.
func uploadMaterialHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read file: %v", err))
			return
		}

		material, result, err := engine.Submit(r.Context(), SubmitRequest{
			ProjectID: r.FormValue("projectId"),
			Platform:  specs.Platform(r.FormValue("platform")),
			AssetSlot: r.FormValue("assetSlot"),
			FileName:  header.Filename,
			Content:   content,
			Identity:  identity(r),
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"material": material,
			"warnings": result.Warnings,
		})
	}
}

// getMaterialHandler returns a handler that retrieves one material.
func getMaterialHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		material, err := engine.Materials().Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if material == nil {
			writeError(w, http.StatusNotFound, "material not found")
			return
		}
		writeJSON(w, http.StatusOK, material)
	}
}

// changeMaterialStatusHandler returns a handler that drives the lifecycle
// state machine for a material.
func changeMaterialStatusHandler(engine *Engine) http.HandlerFunc {
	type request struct {
		Status   MaterialStatus `json:"status"`
		Comments string         `json:"comments,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		material, err := engine.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status, identity(r), req.Comments)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, material)
	}
}

// rollbackMaterialHandler returns a handler that restores a prior version.
func rollbackMaterialHandler(engine *Engine) http.HandlerFunc {
	type request struct {
		VersionID string `json:"versionId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		material, err := engine.Rollback(r.Context(), chi.URLParam(r, "id"), req.VersionID, identity(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, material)
	}
}

// listVersionsHandler returns a handler that lists a material's versions.
func listVersionsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		versions, err := engine.Versions().ListByMaterial(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
	}
}

// listMaterialApprovalsHandler returns a handler that lists a material's
// approvals.
func listMaterialApprovalsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		approvals, err := engine.Approvals().ListByMaterial(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"approvals": approvals})
	}
}

// materialHistoryHandler returns a handler that lists a material's audit
// trail, newest first.
func materialHistoryHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, nextToken, total, err := engine.AuditLog().ListByEntity(
			EntityMaterial, chi.URLParam(r, "id"),
			intQuery(r, "pageSize"), r.URL.Query().Get("pageToken"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

// pendingApprovalsHandler returns a handler that lists the calling
// reviewer's open approvals.
func pendingApprovalsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		approvals, err := engine.Approvals().ListPendingForReviewer(identity(r).Actor)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"approvals": approvals})
	}
}

// resolveApprovalHandler returns a handler for approve/reject decisions.
func resolveApprovalHandler(engine *Engine, approve bool) http.HandlerFunc {
	type request struct {
		Comments string `json:"comments,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
				return
			}
		}

		var (
			approval *ApprovalRecord
			err      error
		)
		if approve {
			approval, err = engine.Approve(r.Context(), chi.URLParam(r, "id"), identity(r), req.Comments)
		} else {
			approval, err = engine.Reject(r.Context(), chi.URLParam(r, "id"), identity(r), req.Comments)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, approval)
	}
}

// listAuditHandler returns a handler over the global audit ledger.
func listAuditHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, nextToken, total, err := engine.AuditLog().ListAll(
			AuditAction(r.URL.Query().Get("action")),
			r.URL.Query().Get("actor"),
			intQuery(r, "pageSize"),
			r.URL.Query().Get("pageToken"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

// entityAuditHandler returns a handler over one entity's audit trail,
// addressed by (entity type, entity id) the way ledger rows are keyed.
func entityAuditHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, nextToken, total, err := engine.AuditLog().ListByEntity(
			chi.URLParam(r, "type"), chi.URLParam(r, "id"),
			intQuery(r, "pageSize"), r.URL.Query().Get("pageToken"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

func intQuery(r *http.Request, key string) int {
	var v int
	_, _ = fmt.Sscanf(r.URL.Query().Get(key), "%d", &v)
	return v
}

// dashboardStatsHandler returns a handler that computes cross-project
// progress for the requesting identity.
func dashboardStatsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := authz.IdentityFromContext(r.Context())
		stats, err := engine.DashboardStats(id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
