package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkotelnikov/go-identity-store/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
)

func TestAddLogin_Success(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	user := testUser()
	login := &models.UserLogin{
		LoginProvider:       "google",
		ProviderKey:         "key-1",
		ProviderDisplayName: "Google",
	}

	mock.ExpectExec("INSERT INTO user_logins").
		WithArgs("google", "key-1", "Google", user.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.AddLogin(context.Background(), user, login); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if login.UserID != user.ID {
		t.Errorf("expected login bound to %s, got %s", user.ID, login.UserID)
	}
}

func TestAddLogin_AlreadyExists(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO user_logins").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := s.AddLogin(context.Background(), testUser(), &models.UserLogin{
		LoginProvider: "google",
		ProviderKey:   "key-1",
	})
	if !errors.Is(err, ErrLoginAlreadyExists) {
		t.Fatalf("expected ErrLoginAlreadyExists, got %v", err)
	}
}

func TestAddLogin_NilLogin(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	if err := s.AddLogin(context.Background(), testUser(), nil); !errors.Is(err, ErrNilLogin) {
		t.Fatalf("expected ErrNilLogin, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("nil login must not reach the database: %v", err)
	}
}

func TestRemoveLogin_AbsentBindingIsNoop(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	user := testUser()

	mock.ExpectExec("DELETE FROM user_logins").
		WithArgs(user.ID, "google", "key-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.RemoveLogin(context.Background(), user, "google", "key-1"); err != nil {
		t.Fatalf("removing an absent binding must be silent, got %v", err)
	}
}

func TestGetLogins_Success(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	user := testUser()

	rows := sqlmock.NewRows([]string{"login_provider", "provider_key", "provider_display_name", "user_id"}).
		AddRow("github", "gh-1", nil, user.ID.String()).
		AddRow("google", "g-1", "Google", user.ID.String())

	mock.ExpectQuery("SELECT login_provider").
		WithArgs(user.ID).
		WillReturnRows(rows)

	logins, err := s.GetLogins(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logins) != 2 {
		t.Fatalf("expected 2 logins, got %d", len(logins))
	}
	if logins[0].ProviderDisplayName != "" {
		t.Errorf("NULL display name should collapse to empty string, got %q", logins[0].ProviderDisplayName)
	}
	if logins[1].LoginProvider != "google" || logins[1].ProviderDisplayName != "Google" {
		t.Errorf("unexpected second login: %+v", logins[1])
	}
}

func TestFindByLogin_Success(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	id := uuid.New()

	mock.ExpectQuery("SELECT user_id").
		WithArgs("google", "key-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(id.String()))

	userRows := sqlmock.NewRows(testUserColumns).
		AddRow(id.String(), "john", "JOHN", nil, nil, false, nil, nil, uuid.NewString(), false, 0)

	mock.ExpectQuery("SELECT id, user_name").
		WithArgs(id).
		WillReturnRows(userRows)

	user, err := s.FindByLogin(context.Background(), "google", "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != id {
		t.Fatalf("expected user %s, got %+v", id, user)
	}
}

func TestFindByLogin_UnknownBinding(t *testing.T) {
	s, mock, db := newTestStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id").
		WithArgs("google", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	user, err := s.FindByLogin(context.Background(), "google", "missing")
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
	// the user lookup must not run for an unknown binding
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
