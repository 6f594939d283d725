package service

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-go/internal/crypto"
	"github.com/eventhub/eventhub-go/internal/model"
	"github.com/eventhub/eventhub-go/internal/repository"
)

var userColumns = []string{"id", "name", "email", "password"}

func newMockStore(t *testing.T) (*repository.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &repository.DB{DB: sqlDB, Dialect: repository.MySQL}, mock
}

func newTestAuthService(t *testing.T) (*AuthService, *crypto.TokenIssuer, sqlmock.Sqlmock) {
	db, mock := newMockStore(t)
	tokens := crypto.NewTokenIssuer("test-secret", 24*time.Hour)
	return NewAuthService(repository.NewUserRepository(db), tokens), tokens, mock
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  model.CreateUserRequest
	}{
		{name: "no name", req: model.CreateUserRequest{Email: "a@x.com", Password: "p"}},
		{name: "no email", req: model.CreateUserRequest{Name: "a", Password: "p"}},
		{name: "no pass", req: model.CreateUserRequest{Name: "a", Email: "a@x.com"}},
		{name: "blank name", req: model.CreateUserRequest{Name: "   ", Email: "a@x.com", Password: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, mock := newTestAuthService(t)

			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrRegistrationInput)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	for _, pass := range []string{strings.Repeat("x", 73), strings.Repeat("é", 37)} {
		svc, _, mock := newTestAuthService(t)

		_, err := svc.Register(context.Background(), model.CreateUserRequest{Name: "a", Email: "a@x.com", Password: pass})
		assert.ErrorIs(t, err, ErrPasswordTooLong)
		assert.NoError(t, mock.ExpectationsWereMet(), "nothing may reach the store")
	}
}

func TestRegister_Success(t *testing.T) {
	svc, tokens, mock := newTestAuthService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE name = ? OR email = ?`)).
		WithArgs("a", "a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (name, email, password)`)).
		WithArgs("a", "a@x.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))

	resp, err := svc.Register(context.Background(), model.CreateUserRequest{Name: "a", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "user registered", resp.Message)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, mock := newTestAuthService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE name = ? OR email = ?`)).
		WithArgs("a", "a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "a", "a@x.com", "hash"))

	_, err := svc.Register(context.Background(), model.CreateUserRequest{Name: "a", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	hash, err := crypto.HashPassword("p")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		svc, tokens, mock := newTestAuthService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(4, "a", "a@x.com", hash))

		resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "p"})
		require.NoError(t, err)
		assert.Equal(t, "login successful", resp.Message)

		claims, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(4), claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, mock := newTestAuthService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(4, "a", "a@x.com", hash))

		_, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _, mock := newTestAuthService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
			WithArgs("b@x.com").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := svc.Login(context.Background(), model.LoginRequest{Email: "b@x.com", Password: "p"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetUser(t *testing.T) {
	svc, _, mock := newTestAuthService(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(4, "a", "a@x.com", "hash"))

	user, err := svc.GetUser(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, model.UserResponse{ID: 4, Name: "a", Email: "a@x.com"}, user)
}
