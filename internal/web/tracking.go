// internal/web/tracking.go
//
// Tracking key/value endpoints.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viamail/mailadmin/internal/store/tracking"
)

type trackingSetRequest struct {
	Value string `json:"value"`
}

func (a *API) handleTrackingAll(w http.ResponseWriter, r *http.Request) {
	rows, err := tracking.All(r.Context(), a.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": rows})
}

func (a *API) handleTrackingGet(w http.ResponseWriter, r *http.Request) {
	rec, err := tracking.Get(r.Context(), a.DB, chi.URLParam(r, "key"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"k":    rec.K,
		"v":    rec.V,
		"time": rec.Time,
	})
}

func (a *API) handleTrackingSet(w http.ResponseWriter, r *http.Request) {
	var req trackingSetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := tracking.Set(r.Context(), a.DB, chi.URLParam(r, "key"), req.Value); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleTrackingDelete(w http.ResponseWriter, r *http.Request) {
	if err := tracking.Delete(r.Context(), a.DB, chi.URLParam(r, "key")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
