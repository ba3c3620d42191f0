package domain

import "context"

// User is a stored credential record. PasswordHash is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Roles        []Role `json:"roles"`
}

// RoleRecord is a row of the roles table.
type RoleRecord struct {
	ID   int64
	Name Role
}

// UserRepository is the persistence contract for users and their role memberships.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts the user and one role-membership row per role, atomically.
	Save(ctx context.Context, user *User) (*User, error)
}

// RoleRepository resolves role rows by name.
type RoleRepository interface {
	FindRoleByName(ctx context.Context, name Role) (*RoleRecord, error)
}

// PasswordHasher is an opaque one-way hash and verify primitive.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(hash, raw string) bool
}
