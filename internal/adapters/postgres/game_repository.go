package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

const gameColumns = `id, name, description, category, price, url`

// GameRepository implements domain.GameRepository.
type GameRepository struct {
	db DBTX
}

func NewGameRepository(db DBTX) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) FindByID(ctx context.Context, id int64) (*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g := &domain.Game{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.Price, &g.URL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *GameRepository) FindAll(ctx context.Context) ([]domain.Game, error) {
	return r.list(ctx, `SELECT `+gameColumns+` FROM games ORDER BY id`)
}

func (r *GameRepository) FindByCategory(ctx context.Context, category string) ([]domain.Game, error) {
	return r.list(ctx, `SELECT `+gameColumns+` FROM games WHERE LOWER(category) = LOWER($1) ORDER BY id`, category)
}

func (r *GameRepository) list(ctx context.Context, query string, args ...any) ([]domain.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	games := make([]domain.Game, 0)
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.Price, &g.URL); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return games, nil
}

func (r *GameRepository) Save(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	if game.ID == 0 {
		query := `INSERT INTO games (name, description, category, price, url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`
		if err := r.db.QueryRowContext(ctx, query,
			game.Name, game.Description, game.Category, game.Price, game.URL).Scan(&game.ID); err != nil {
			return nil, writeError("games", err)
		}
		return game, nil
	}

	query := `UPDATE games SET name = $1, description = $2, category = $3, price = $4, url = $5
		 WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		game.Name, game.Description, game.Category, game.Price, game.URL, game.ID)
	if err != nil {
		return nil, writeError("games", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrNotFound
	}
	return game, nil
}

func (r *GameRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *GameRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
