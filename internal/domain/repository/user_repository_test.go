package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"auth_api/internal/common"
	"auth_api/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "username", "name", "email", "password_hash", "created_at"}

const (
	insertUserQuery = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*name,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at$`
	selectUserQuery = `(?s)^SELECT\s+id,\s*username,\s*name,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users`
)

func newPgRepoWithMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgUserRepository(db), mock
}

func TestPgCreate_Success(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("ana", "Ana", "ana@x.com", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("6f1c2b1e-0000-4000-8000-000000000001", created))

	u := &model.User{Username: "ana", Name: "Ana", Email: "ana@x.com", Password: "$2a$10$hash"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, "6f1c2b1e-0000-4000-8000-000000000001", u.ID)
	assert.Equal(t, created, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email", "users_email_key", common.ErrDuplicateEmail},
		{"username", "users_username_key", common.ErrDuplicateUsername},
		{"other", "users_pkey", common.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newPgRepoWithMock(t)
			mock.ExpectQuery(insertUserQuery).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &model.User{Username: "ana", Name: "Ana", Email: "ana@x.com", Password: "h"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPgCreate_DBError(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	mock.ExpectQuery(insertUserQuery).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{Username: "ana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pgUserRepository.Create: db down")
	_, isAuth := common.AsAuthError(err)
	assert.False(t, isAuth)
}

func TestPgFindByEmail(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectUserQuery + `\s+WHERE\s+email\s*=\s*\$1$`).
		WithArgs("ana@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "ana", "Ana", "ana@x.com", "hash", created))

	u, err := repo.FindByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, &model.User{ID: "u-1", Username: "ana", Name: "Ana", Email: "ana@x.com", Password: "hash", CreatedAt: created}, u)
}

func TestPgFindByUsername_NotFound(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	mock.ExpectQuery(selectUserQuery + `\s+WHERE\s+username\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgFindByID(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	mock.ExpectQuery(selectUserQuery + `\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})
	mock.ExpectQuery(selectUserQuery + `\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u-2").
		WillReturnError(errors.New("conn reset"))

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.FindByID(context.Background(), "u-2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "pgUserRepository.FindByID")
}

func TestPgList(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	mock.ExpectQuery(selectUserQuery + `\s+ORDER\s+BY\s+created_at,\s*id$`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "ana", "Ana", "ana@x.com", "h1", t1).
			AddRow("u-2", "bia", "Bia", "bia@x.com", "h2", t2))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ana", users[0].Username)
	assert.Equal(t, "bia", users[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgList_Empty(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	mock.ExpectQuery(selectUserQuery).WillReturnRows(sqlmock.NewRows(userColumns))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestPgList_RowError(t *testing.T) {
	repo, mock := newPgRepoWithMock(t)
	mock.ExpectQuery(selectUserQuery).WillReturnRows(
		sqlmock.NewRows(userColumns).
			AddRow("u-1", "ana", "Ana", "ana@x.com", "h1", time.Now()).
			RowError(0, errors.New("broken row")))

	_, err := repo.List(context.Background())
	assert.Error(t, err)
}
