// internal/web/router_test.go
//
// Handler tests driving the full router with httptest and sqlmock.
//
// Run: go test ./internal/web -v

package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/viamail/mailadmin/internal/cleanup"
	"github.com/viamail/mailadmin/internal/webmail"
)

func newAPI(t *testing.T) (*API, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "mysql")

	wm := webmail.Defaults()
	wm.DSNW = "mysql://rc:pw@localhost/rcdb"
	wm.IMAP.Host = "imap.example.com"
	wm.SMTP.Host = "smtp.example.com"
	wm.SMTP.Pass = "hunter2"

	return &API{
		DB:            db,
		Webmail:       &wm,
		Cleaner:       cleanup.New(db, time.Hour, 24*time.Hour, zap.NewNop().Sugar()),
		OwnershipTTL:  24 * time.Hour,
		NewsletterTTL: 48 * time.Hour,
		Log:           zap.NewNop().Sugar(),
	}, mock
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.RemoteAddr = "192.0.2.7:55555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSessionSave(t *testing.T) {
	api, mock := newAPI(t)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("sess-1", "payload").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := do(t, api.Router(), http.MethodPut, "/api/sessions/sess-1",
		`{"data":"payload"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSessionGetMissingIs404(t *testing.T) {
	api, mock := newAPI(t)

	mock.ExpectQuery("SELECT session_id, atime, data").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	rec := do(t, api.Router(), http.MethodGet, "/api/sessions/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLogRecordFillsClientIP(t *testing.T) {
	api, mock := newAPI(t)

	// The entry carries no ip; the enrichment middleware supplies the
	// RemoteAddr set in do().
	mock.ExpectExec("INSERT INTO log").
		WithArgs("postmaster@x.com", "x.com", "", "192.0.2.7", "create", "info", "new mailbox").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := do(t, api.Router(), http.MethodPost, "/api/log",
		`{"admin":"postmaster@x.com","domain":"x.com","event":"create","msg":"new mailbox"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["loglevel"] != "info" {
		t.Errorf("expected defaulted loglevel info, got %q", resp["loglevel"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestLogSearchBadSinceIs400(t *testing.T) {
	api, _ := newAPI(t)

	rec := do(t, api.Router(), http.MethodGet, "/api/log?since=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOwnershipBegin(t *testing.T) {
	api, mock := newAPI(t)

	mock.ExpectExec("INSERT INTO domain_ownership").
		WithArgs("a@x.com", "x.com", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := do(t, api.Router(), http.MethodPost, "/api/ownership",
		`{"admin":"a@x.com","domain":"x.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp["verify_code"]) != 40 {
		t.Errorf("unexpected verify_code: %q", resp["verify_code"])
	}
}

func TestOwnershipBeginRequiresDomain(t *testing.T) {
	api, _ := newAPI(t)

	rec := do(t, api.Router(), http.MethodPost, "/api/ownership",
		`{"admin":"a@x.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConfirmConsumeExpiredIs410(t *testing.T) {
	api, mock := newAPI(t)

	past := time.Now().Add(-time.Hour).Unix()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, mail, mlid").
		WithArgs("ml-1", "tok-old").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "mail", "mlid", "subscriber", "kind", "token", "expired",
		}).AddRow(3, "l@x.com", "ml-1", "bob@y.com", "subscribe", "tok-old", past))
	mock.ExpectExec("DELETE FROM newsletter_subunsub_confirms").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := do(t, api.Router(), http.MethodPost, "/api/newsletter/confirms/consume",
		`{"mlid":"ml-1","token":"tok-old"}`)
	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
}

func TestSettingsGetFallsBackToGlobal(t *testing.T) {
	api, mock := newAPI(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT v FROM settings WHERE account = ? AND k = ? LIMIT 1`,
	)).
		WithArgs("admin@x.com", "page_size").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT v FROM settings").
		WithArgs("global", "page_size").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(`{"value":50}`))

	rec := do(t, api.Router(), http.MethodGet, "/api/settings/admin@x.com/page_size", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if strings.TrimSpace(rec.Body.String()) != "50" {
		t.Errorf("expected bare value 50, got %s", rec.Body)
	}
}

func TestWebmailConfigHidesSecrets(t *testing.T) {
	api, _ := newAPI(t)

	rec := do(t, api.Router(), http.MethodGet, "/api/webmail/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "hunter2") || strings.Contains(body, ":pw@") {
		t.Errorf("response leaks secrets: %s", body)
	}
	if !strings.Contains(body, "imap.example.com") {
		t.Errorf("response missing endpoint: %s", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	api, mock := newAPI(t)

	mock.ExpectPing()

	rec := do(t, api.Router(), http.MethodGet, "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("missing nosniff header, got %q", got)
	}
}
