// internal/web/respond.go
//
// JSON response and error-mapping helpers shared by every handler.
package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-sql-driver/mysql"

	"github.com/viamail/mailadmin/internal/store/newsletter"
)

// mysqlDupEntry is the server error number for a unique-key violation.
const mysqlDupEntry = 1062

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// storeError maps store failures onto HTTP statuses:
//
//	sql.ErrNoRows             → 404
//	newsletter.ErrTokenExpired → 410
//	duplicate unique key      → 409
//	anything else             → 500
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, newsletter.ErrTokenExpired):
		writeError(w, http.StatusGone, err)
	default:
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields so
// client typos surface as 400s instead of silently-dropped options.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
