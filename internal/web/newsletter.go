// internal/web/newsletter.go
//
// Mailing-list confirmation endpoints.
package web

import (
	"errors"
	"net/http"

	"github.com/viamail/mailadmin/internal/store/newsletter"
)

type confirmCreateRequest struct {
	Mail       string `json:"mail"`
	Mlid       string `json:"mlid"`
	Subscriber string `json:"subscriber"`
	Kind       string `json:"kind"`
}

func (a *API) handleConfirmCreate(w http.ResponseWriter, r *http.Request) {
	var req confirmCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Mlid == "" || req.Subscriber == "" {
		writeError(w, http.StatusBadRequest, errors.New("mlid and subscriber are required"))
		return
	}

	token, err := newsletter.Create(r.Context(), a.DB,
		req.Mail, req.Mlid, req.Subscriber, req.Kind, a.NewsletterTTL)
	if err != nil {
		// Unknown kind is a caller mistake, not a store failure.
		if req.Kind != newsletter.KindSubscribe && req.Kind != newsletter.KindUnsubscribe {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

type confirmConsumeRequest struct {
	Mlid  string `json:"mlid"`
	Token string `json:"token"`
}

func (a *API) handleConfirmConsume(w http.ResponseWriter, r *http.Request) {
	var req confirmConsumeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := newsletter.Consume(r.Context(), a.DB, req.Mlid, req.Token)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"mail":       rec.Mail,
		"mlid":       rec.Mlid,
		"subscriber": rec.Subscriber,
		"kind":       rec.Kind,
	})
}
