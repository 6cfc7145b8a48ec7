package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = NewUserRepository(db).Create(context.Background(), &domain.User{
		ID: "u-1", Email: "amina@example.com", PasswordHash: "x", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("amina@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "password_hash", "created_at"}).
			AddRow("u-1", "amina@example.com", "Amina", "hash", created))

	u, err := NewUserRepository(db).GetByEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "u-1", Email: "amina@example.com", DisplayName: "Amina", PasswordHash: "hash", CreatedAt: created}, u)
}

func TestUserRepository_UpdateMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET display_name").
		WithArgs("New Name", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewUserRepository(db).UpdateDisplayName(context.Background(), "ghost", "New Name")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM users").
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewUserRepository(db).Delete(context.Background(), "u-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
