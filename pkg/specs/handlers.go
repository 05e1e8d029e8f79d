package specs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandworks/material-registry/pkg/authz"
)

// listPlatformsHandler returns a handler that lists all supported platforms.
func listPlatformsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"platforms": Platforms})
	}
}

// listSlotsHandler returns a handler that lists the effective spec for every
// slot a platform defines.
func listSlotsHandler(registry *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := Platform(chi.URLParam(r, "platform"))
		slots, err := registry.ListSlots(platform)
		if errors.Is(err, ErrSpecNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list slots: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
	}
}

// getSpecHandler returns a handler that resolves the spec in effect for a
// (platform, asset slot).
func getSpecHandler(registry *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := Platform(chi.URLParam(r, "platform"))
		slot := chi.URLParam(r, "slot")

		spec, err := registry.Resolve(platform, slot)
		if errors.Is(err, ErrSpecNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to resolve spec: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, ResolvedSlot{Platform: platform, AssetSlot: slot, Spec: spec})
	}
}

// putSpecHandler returns a handler that creates or replaces an override for
// a (platform, asset slot). Admin only.
func putSpecHandler(registry *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := Platform(chi.URLParam(r, "platform"))
		slot := chi.URLParam(r, "slot")

		var spec Spec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		id, _ := authz.IdentityFromContext(r.Context())
		record, err := registry.Upsert(platform, slot, spec, id.Actor)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// deleteSpecHandler returns a handler that retires an override so the slot
// falls back to its compiled default. Admin only.
func deleteSpecHandler(registry *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := Platform(chi.URLParam(r, "platform"))
		slot := chi.URLParam(r, "slot")

		id, _ := authz.IdentityFromContext(r.Context())
		err := registry.Deactivate(platform, slot, id.Actor)
		if errors.Is(err, ErrSpecNotFound) {
			writeError(w, http.StatusNotFound, "no active override for slot")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to deactivate spec: %v", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

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
