package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// UserRepository implements domain.UserRepository and domain.RoleRepository.
// Save needs a transaction, so it holds the *sql.DB rather than a DBTX.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, email, password FROM users WHERE username = $1`

	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	roles, err := r.rolesOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	query := `SELECT u.id, u.username, u.email, COALESCE(ro.name, '')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles ro ON ro.id = ur.role_id
		 ORDER BY u.id, ro.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			u    domain.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &role); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if n := len(users); n == 0 || users[n-1].ID != u.ID {
			u.Roles = []domain.Role{}
			users = append(users, u)
		}
		if role != "" {
			last := &users[len(users)-1]
			last.Roles = append(last.Roles, domain.Role(role))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (r *UserRepository) rolesOf(ctx context.Context, userID int64) ([]domain.Role, error) {
	query := `SELECT ro.name FROM roles ro
		 JOIN user_roles ur ON ur.role_id = ro.id
		 WHERE ur.user_id = $1
		 ORDER BY ro.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0, 2)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, domain.Role(name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return roles, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		query := `INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id`
		if err := tx.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(&user.ID); err != nil {
			return writeError("users", err)
		}

		for _, role := range user.Roles {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_id) SELECT $1, id FROM roles WHERE name = $2`,
				user.ID, string(role))
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindRoleByName(ctx context.Context, name domain.Role) (*domain.RoleRecord, error) {
	rec := &domain.RoleRecord{}
	var roleName string
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = $1`, string(name)).Scan(&rec.ID, &roleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.Name = domain.Role(roleName)
	return rec, nil
}
