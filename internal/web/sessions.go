// internal/web/sessions.go
//
// Session endpoints.  The frontend owns the session lifecycle; these
// handlers are thin wrappers over internal/store/session.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viamail/mailadmin/internal/store/session"
)

type sessionSaveRequest struct {
	Data string `json:"data"`
}

func (a *API) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req sessionSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := session.Save(r.Context(), a.DB, id, req.Data); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

func (a *API) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	rec, err := session.Get(r.Context(), a.DB, chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": rec.SessionID,
		"atime":      rec.Atime,
		"data":       rec.Data,
	})
}

func (a *API) handleSessionTouch(w http.ResponseWriter, r *http.Request) {
	if err := session.Touch(r.Context(), a.DB, chi.URLParam(r, "id")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := session.Delete(r.Context(), a.DB, chi.URLParam(r, "id")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
