// internal/store/newsletter/newsletter_test.go
//
// Unit-tests for newsletter confirmation helpers using sqlmock.

package newsletter

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func TestCreateIssuesToken(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("INSERT INTO newsletter_subunsub_confirms").
		WithArgs("list@x.com", "ml-1", "bob@y.com", KindSubscribe,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	token, err := Create(context.Background(), db,
		"list@x.com", "ml-1", "bob@y.com", KindSubscribe, 48*time.Hour)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	db, _ := newMock(t)

	if _, err := Create(context.Background(), db,
		"list@x.com", "ml-1", "bob@y.com", "resubscribe", time.Hour); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestConsumeDeletesRow(t *testing.T) {
	db, mock := newMock(t)

	future := time.Now().Add(time.Hour).Unix()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, mail, mlid, subscriber, kind, token, expired FROM newsletter_subunsub_confirms WHERE mlid = ? AND token = ? LIMIT 1 FOR UPDATE`,
	)).
		WithArgs("ml-1", "tok-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "mail", "mlid", "subscriber", "kind", "token", "expired",
		}).AddRow(9, "list@x.com", "ml-1", "bob@y.com", KindUnsubscribe, "tok-1", future))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM newsletter_subunsub_confirms WHERE id = ?`,
	)).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := Consume(context.Background(), db, "ml-1", "tok-1")
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if rec.Subscriber != "bob@y.com" || rec.Kind != KindUnsubscribe {
		t.Errorf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestConsumeExpiredToken(t *testing.T) {
	db, mock := newMock(t)

	past := time.Now().Add(-time.Hour).Unix()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, mail, mlid").
		WithArgs("ml-1", "tok-old").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "mail", "mlid", "subscriber", "kind", "token", "expired",
		}).AddRow(3, "list@x.com", "ml-1", "bob@y.com", KindSubscribe, "tok-old", past))
	mock.ExpectExec("DELETE FROM newsletter_subunsub_confirms").
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := Consume(context.Background(), db, "ml-1", "tok-old")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	db, mock := newMock(t)

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM newsletter_subunsub_confirms WHERE expired > 0 AND expired < ?`,
	)).
		WithArgs(now.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := PurgeExpired(context.Background(), db, now)
	if err != nil {
		t.Fatalf("PurgeExpired error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}
}
