package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kwachanet/hotspot/internal/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()
	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("user@example.com", "hashed", "user", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

	user := &domain.User{Email: "user@example.com", PasswordHash: "hashed", Role: "user", IsActive: true}
	created, err := repo.Create(context.Background(), user)
	assert.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		found     bool
	}{
		{
			name: "User exists",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at"}).
					AddRow(1, "user@example.com", "hashed", "user", true, now)
				mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
					WithArgs("user@example.com").
					WillReturnRows(rows)
			},
			found: true,
		},
		{
			name: "User does not exist",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
					WithArgs("user@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
					WithArgs("user@example.com").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := repo.FindByEmail(context.Background(), "user@example.com")
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.found {
				assert.NotNil(t, user)
				assert.Equal(t, "user@example.com", user.Email)
			} else {
				assert.Nil(t, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("new@example.com", "newhash", "admin", false, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	user := &domain.User{ID: 1, Email: "new@example.com", PasswordHash: "newhash", Role: "admin", IsActive: false}
	assert.NoError(t, repo.Update(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "email", "password_hash", "role", "is_active", "created_at"}).
		AddRow(1, "a@example.com", "h1", "admin", true, now).
		AddRow(2, "b@example.com", "h2", "user", true, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).WillReturnRows(rows)

	users, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountActive(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = TRUE")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActive(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
