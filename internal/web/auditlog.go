// internal/web/auditlog.go
//
// Audit-trail endpoints.  Record fills a missing `ip` from the request
// enrichment, so frontends that do not forward the client address still
// produce attributable entries.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/viamail/mailadmin/internal/requestinfo"
	"github.com/viamail/mailadmin/internal/store/auditlog"
)

type logRecordRequest struct {
	Admin    string `json:"admin"`
	Domain   string `json:"domain"`
	Username string `json:"username"`
	IP       string `json:"ip"`
	Event    string `json:"event"`
	Loglevel string `json:"loglevel"`
	Msg      string `json:"msg"`
}

func (a *API) handleLogRecord(w http.ResponseWriter, r *http.Request) {
	var req logRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.IP == "" {
		req.IP = requestinfo.ClientIP(r.Context())
	}

	e := &auditlog.Entry{
		Admin:    req.Admin,
		Domain:   req.Domain,
		Username: req.Username,
		IP:       req.IP,
		Event:    req.Event,
		Loglevel: req.Loglevel,
		Msg:      req.Msg,
	}
	if err := auditlog.Record(r.Context(), a.DB, e); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"event":    e.Event,
		"loglevel": e.Loglevel,
	})
}

func (a *API) handleLogSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := auditlog.Filter{
		Admin:    q.Get("admin"),
		Domain:   q.Get("domain"),
		Username: q.Get("username"),
		Event:    q.Get("event"),
		Loglevel: q.Get("loglevel"),
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		f.Since = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		f.Until = t
	}
	if v := q.Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}

	rows, err := auditlog.Search(r.Context(), a.DB, f)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": rows})
}
