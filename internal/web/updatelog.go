// internal/web/updatelog.go
//
// Update-run bookkeeping endpoints.
package web

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/viamail/mailadmin/internal/store/updatelog"
)

type updatelogMarkRequest struct {
	Date string `json:"date"` // YYYY-MM-DD; empty means today
}

func (a *API) handleUpdatelogMark(w http.ResponseWriter, r *http.Request) {
	// An empty body marks today.
	var req updatelogMarkRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	day := time.Now()
	if req.Date != "" {
		var err error
		day, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if err := updatelog.MarkRan(r.Context(), a.DB, day); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"date": day.Format("2006-01-02"),
	})
}

func (a *API) handleUpdatelogLast(w http.ResponseWriter, r *http.Request) {
	last, err := updatelog.LastRun(r.Context(), a.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if last.IsZero() {
		writeJSON(w, http.StatusOK, map[string]any{"date": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"date": last.Format("2006-01-02"),
	})
}
