// internal/web/settings.go
//
// Settings endpoints.  The stored shape is the JSON envelope described in
// internal/store/settings; over HTTP the envelope stays hidden—clients
// send and receive bare JSON values.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viamail/mailadmin/internal/store/settings"
)

func (a *API) handleSettingsAll(w http.ResponseWriter, r *http.Request) {
	all, err := settings.All(r.Context(), a.DB, chi.URLParam(r, "account"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (a *API) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	var v json.RawMessage
	err := settings.Get(r.Context(), a.DB,
		chi.URLParam(r, "account"), chi.URLParam(r, "key"), &v)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleSettingsSet(w http.ResponseWriter, r *http.Request) {
	var v json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := settings.Set(r.Context(), a.DB,
		chi.URLParam(r, "account"), chi.URLParam(r, "key"), v)
	if err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSettingsDelete(w http.ResponseWriter, r *http.Request) {
	err := settings.Delete(r.Context(), a.DB,
		chi.URLParam(r, "account"), chi.URLParam(r, "key"))
	if err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
