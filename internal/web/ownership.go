// internal/web/ownership.go
//
// Domain-ownership verification endpoints.
package web

import (
	"errors"
	"net/http"

	"github.com/viamail/mailadmin/internal/store/ownership"
)

type ownershipBeginRequest struct {
	Admin       string `json:"admin"`
	Domain      string `json:"domain"`
	AliasDomain string `json:"alias_domain"`
}

func (a *API) handleOwnershipBegin(w http.ResponseWriter, r *http.Request) {
	var req ownershipBeginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Admin == "" || req.Domain == "" {
		writeError(w, http.StatusBadRequest, errors.New("admin and domain are required"))
		return
	}

	code, err := ownership.Begin(r.Context(), a.DB,
		req.Admin, req.Domain, req.AliasDomain, a.OwnershipTTL)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"verify_code": code})
}

type ownershipAttemptRequest struct {
	Admin       string `json:"admin"`
	Domain      string `json:"domain"`
	AliasDomain string `json:"alias_domain"`
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
}

func (a *API) handleOwnershipAttempt(w http.ResponseWriter, r *http.Request) {
	var req ownershipAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := ownership.Attempt(r.Context(), a.DB,
		req.Admin, req.Domain, req.AliasDomain, req.OK, req.Message)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": req.OK})
}

func (a *API) handleOwnershipPending(w http.ResponseWriter, r *http.Request) {
	admin := r.URL.Query().Get("admin")
	if admin == "" {
		writeError(w, http.StatusBadRequest, errors.New("admin query parameter is required"))
		return
	}

	rows, err := ownership.Pending(r.Context(), a.DB, admin)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": rows})
}

func (a *API) handleOwnershipVerified(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		writeError(w, http.StatusBadRequest, errors.New("domain query parameter is required"))
		return
	}

	ok, err := ownership.Verified(r.Context(), a.DB, domain)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": ok})
}
