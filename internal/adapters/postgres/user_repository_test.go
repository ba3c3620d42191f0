package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewUserRepository(db), mock, db
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, password FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password"}).AddRow(1, "alice", "a@x.io", "hash"))
	mock.ExpectQuery(`(?s)SELECT ro.name FROM roles ro.*WHERE ur.user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ROLE_USER").AddRow("ROLE_ADMIN"))

	u, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAdmin}, u.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_FindAll_GroupsRoles(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT u.id, u.username, u.email.*LEFT JOIN user_roles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "name"}).
			AddRow(1, "alice", "a@x.io", "ROLE_USER").
			AddRow(1, "alice", "a@x.io", "ROLE_ADMIN").
			AddRow(2, "bob", "b@x.io", ""))

	users, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAdmin}, users[0].Roles)
	assert.Empty(t, users[1].Roles)
}

func TestUserRepository_Exists(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).WithArgs("a@x.io").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByEmail(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_SaveCommitsUserAndRoles(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)INSERT INTO users \(username, email, password\).*RETURNING id`).
		WithArgs("alice", "a@x.io", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec(`INSERT INTO user_roles`).WithArgs(int64(10), "ROLE_USER").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := repo.Save(context.Background(), &domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "hash", Roles: []domain.Role{domain.RoleUser}})
	require.NoError(t, err)
	assert.Equal(t, int64(10), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SaveRollsBackOnRoleFailure(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO user_roles`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), &domain.User{Username: "bob", Email: "b@x.io", PasswordHash: "h", Roles: []domain.Role{domain.RoleUser}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SaveUniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{constraint: "users_username_key", field: "username"},
		{constraint: "users_email_key", field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			repo, mock, db := newUserRepoWithMock(t)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})
			mock.ExpectRollback()

			_, err := repo.Save(context.Background(), &domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"})
			require.ErrorIs(t, err, domain.ErrDuplicate)
			var dup *domain.DuplicateError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tt.field, dup.Field)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindRoleByName(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name FROM roles WHERE name = \$1`).WithArgs("ROLE_ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "ROLE_ADMIN"))
	mock.ExpectQuery(`FROM roles WHERE name`).WithArgs("ROLE_NOPE").WillReturnError(sql.ErrNoRows)

	rec, err := repo.FindRoleByName(context.Background(), domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, rec.Name)

	_, err = repo.FindRoleByName(context.Background(), domain.Role("ROLE_NOPE"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
