package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

var gameCols = []string{"id", "name", "description", "category", "price", "url"}

func newGameRepoWithMock(t *testing.T) (*GameRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewGameRepository(db), mock, db
}

func TestGameRepository_FindByID(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, description, category, price, url FROM games WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(gameCols).AddRow(42, "Hollow Knight", "A long enough description", "Metroidvania", 15.0, "https://x"))

	got, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "Metroidvania", got.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM games WHERE id = \$1`).WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGameRepository_FindByCategory_CaseInsensitive(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE LOWER\(category\) = LOWER\(\$1\)`).
		WithArgs("rpg").
		WillReturnRows(sqlmock.NewRows(gameCols).
			AddRow(1, "Baldur's Gate", "A long enough description", "RPG", 60.0, "https://a").
			AddRow(2, "Disco Elysium", "A long enough description", "Rpg", 40.0, "https://b"))

	got, err := repo.FindByCategory(context.Background(), "rpg")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGameRepository_FindAll_Empty(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM games ORDER BY id`).WillReturnRows(sqlmock.NewRows(gameCols))

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGameRepository_SaveInsertAndUpdate(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)INSERT INTO games \(name, description, category, price, url\).*RETURNING id`).
		WithArgs("Celeste!", "A long enough description", "Platformer", 20.0, "https://c").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	g := &domain.Game{Name: "Celeste!", Description: "A long enough description", Category: "Platformer", Price: 20, URL: "https://c"}
	saved, err := repo.Save(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.ID)

	mock.ExpectExec(`(?s)UPDATE games SET .* WHERE id = \$6`).
		WithArgs("Celeste!", "A long enough description", "Indie", 20.0, "https://c", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved.Category = "Indie"
	_, err = repo.Save(context.Background(), saved)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE games`).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = repo.Save(context.Background(), &domain.Game{ID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_SaveDuplicateName(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "games_name_key"}
	mock.ExpectQuery(`INSERT INTO games`).WillReturnError(unique)
	mock.ExpectExec(`UPDATE games`).WillReturnError(unique)

	_, err := repo.Save(context.Background(), &domain.Game{Name: "Celeste!"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "name", dup.Field)

	_, err = repo.Save(context.Background(), &domain.Game{ID: 5, Name: "Celeste!"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_DeleteAndExists(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM games WHERE id = \$1`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteByID(context.Background(), 3))

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err := repo.ExistsByID(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGameRepository_DBErrorPropagates(t *testing.T) {
	repo, mock, db := newGameRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM games`).WillReturnError(errors.New("db down"))

	_, err := repo.FindAll(context.Background())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
