package postgres

import (
	"context"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		GoogleID:  "108234567890123456789",
		Name:      "Ada Lovelace",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func userColumns() []string {
	return []string{"id", "email", "google_id", "name", "created_at", "updated_at"}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns()).AddRow(
		u.ID, u.Email, u.GoogleID, u.Name, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.GoogleID, u.Name, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	result, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, u.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByGoogleID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE google_id").
		WithArgs(u.GoogleID).
		WillReturnRows(userRow(u))

	result, err := repo.GetByGoogleID(context.Background(), u.GoogleID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, u.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByGoogleID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE google_id").
		WithArgs("unknown-subject").
		WillReturnRows(pgxmock.NewRows(userColumns()))

	result, err := repo.GetByGoogleID(context.Background(), "unknown-subject")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
