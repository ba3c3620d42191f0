package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/game-catalog-service/benchmarks/mocks"
	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

type credentialFixture struct {
	svc    *application.CredentialService
	users  *mocks.MockUserRepository
	hasher *mocks.MockPasswordHasher
	tokens *application.TokenService
}

func newCredentialFixture(t *testing.T, seed ...domain.User) *credentialFixture {
	t.Helper()
	users := mocks.NewMockUserRepository(seed...)
	hasher := &mocks.MockPasswordHasher{}
	tokens := application.NewTokenService(testKey, 0)
	return &credentialFixture{
		svc:    application.NewCredentialService(users, users, hasher, tokens, mocks.NewMockLogger()),
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func TestCredentialService_RegisterThenDuplicate(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	msg, err := f.svc.Register(ctx, "alice", "alice@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully!", msg)

	stored, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleUser}, stored.Roles)
	assert.Equal(t, "hashed:Abcdef1!", stored.PasswordHash)

	_, err = f.svc.Register(ctx, "alice", "other@example.com", "Abcdef1!")
	assert.ErrorIs(t, err, application.ErrUsernameTaken)
}

func TestCredentialService_RegisterEmailTaken(t *testing.T) {
	f := newCredentialFixture(t, domain.User{ID: 1, Username: "bob", Email: "bob@example.com"})

	_, err := f.svc.Register(context.Background(), "robert", "BOB@example.com", "Abcdef1!")
	assert.ErrorIs(t, err, application.ErrEmailTaken)
}

func TestCredentialService_RegisterWeakPasswordDoesNotHash(t *testing.T) {
	f := newCredentialFixture(t)

	_, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.ErrorIs(t, err, application.ErrWeakPassword)

	var weak *application.WeakPasswordError
	require.True(t, errors.As(err, &weak))
	assert.NotEmpty(t, weak.Violations)
	assert.Zero(t, f.hasher.HashCalls)
	assert.Zero(t, f.users.SaveCalls)
}

func TestCredentialService_Authenticate(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", "alice@example.com", "Abcdef1!")
	require.NoError(t, err)

	res, err := f.svc.Authenticate(ctx, "alice", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Principal.Subject)
	assert.Equal(t, "alice@example.com", res.Email)
	assert.NotZero(t, res.UserID)

	p, err := f.tokens.Verify(res.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Subject)
	assert.Equal(t, []domain.Role{domain.RoleUser}, p.Roles)
}

func TestCredentialService_AuthenticateFailures(t *testing.T) {
	f := newCredentialFixture(t, domain.User{
		ID: 7, Username: "carol", Email: "carol@example.com",
		PasswordHash: "hashed:Secret1!", Roles: []domain.Role{domain.RoleUser},
	})
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "nobody", "Secret1!")
	assert.ErrorIs(t, err, application.ErrUserNotFound)

	_, err = f.svc.Authenticate(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, application.ErrBadCredentials)
}

func TestCredentialService_UnknownUserStillVerifiesHash(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Authenticate(ctx, "nobody", "Secret1!")
		require.ErrorIs(t, err, application.ErrUserNotFound)
	}

	assert.Equal(t, int64(3), f.hasher.VerifyCalls)
	assert.Equal(t, int64(1), f.hasher.HashCalls)
}

func TestCredentialService_SaveRaceMapsToTaken(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  error
	}{
		{name: "username", field: "username", want: application.ErrUsernameTaken},
		{name: "email", field: "email", want: application.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCredentialFixture(t)
			f.users.SaveErr = fmt.Errorf("db error: %w", &domain.DuplicateError{Field: tt.field})

			_, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "Abcdef1!")
			assert.ErrorIs(t, err, tt.want)

			_, err = f.svc.CreateUser(context.Background(), "bob", "bob@example.com", "weak", false)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCredentialService_CreateUser(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	admin, err := f.svc.CreateUser(ctx, "root", "root@example.com", "weak", true)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleUser, domain.RoleAdmin}, admin.Roles)

	plain, err := f.svc.CreateUser(ctx, "dave", "dave@example.com", "weak", false)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleUser}, plain.Roles)

	_, err = f.svc.CreateUser(ctx, "root", "x@example.com", "weak", false)
	assert.ErrorIs(t, err, application.ErrUsernameTaken)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "root", users[0].Username)
}

func TestCredentialService_RepositoryErrorPropagates(t *testing.T) {
	f := newCredentialFixture(t)
	dbErr := errors.New("db down")
	f.users.Err = dbErr

	_, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "Abcdef1!")
	assert.ErrorIs(t, err, dbErr)

	_, err = f.svc.Authenticate(context.Background(), "alice", "Abcdef1!")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, application.ErrUserNotFound)
}
