package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dbx := sqlx.NewDb(mockDB, "sqlmock")
	return NewUserService(NewUserRepo(dbx)), mock
}

func userRow(id uuid.UUID, email, passwordHash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "avatar_url", "created_at", "updated_at",
	}).AddRow(id, "Ada", email, passwordHash, "USER", nil, now, now)
}

func TestRegisterValidatesFields(t *testing.T) {
	svc, mock := newTestService(t)

	cases := []*RegisterRequest{
		{},
		{Name: "Ada", Email: "ada@example.com"},
		{Name: "Ada", Password: "secret"},
		{Email: "ada@example.com", Password: "secret"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterLowercasesEmail(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ada", "ada@example.com", sqlmock.AnyArg()).
		WillReturnRows(userRow(id, "ada@example.com", "hash"))

	u, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Ada",
		Email:    "Ada@Example.COM",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret",
	})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	svc, mock := newTestService(t)
	id := uuid.New()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE email =").
		WithArgs("ada@example.com").
		WillReturnRows(userRow(id, "ada@example.com", string(hash)))

	u, err := svc.Authenticate(context.Background(), "Ada@Example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, mock := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE email =").
		WillReturnRows(userRow(uuid.New(), "ada@example.com", string(hash)))

	_, err = svc.Authenticate(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeUnauthenticated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("FROM users WHERE email =").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "secret")
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeUnauthenticated))
	assert.NoError(t, mock.ExpectationsWereMet())
}
