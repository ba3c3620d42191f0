package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("bad credentials")
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrEmailTaken     = errors.New("email is already in use")
)

// RegistrationSuccessMessage is returned by Register.
const RegistrationSuccessMessage = "User registered successfully!"

// timingPassword is hashed once and verified against on unknown usernames so that
// a failed lookup costs the same as a wrong password.
const timingPassword = "timing-equalizer-password"

// CredentialService verifies logins and creates users.
type CredentialService struct {
	users  domain.UserRepository
	roles  domain.RoleRepository
	hasher domain.PasswordHasher
	tokens *TokenService
	logger domain.Logger

	timingOnce sync.Once
	timingHash string
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(
	users domain.UserRepository,
	roles domain.RoleRepository,
	hasher domain.PasswordHasher,
	tokens *TokenService,
	logger domain.Logger,
) *CredentialService {
	return &CredentialService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate checks username/rawPassword against the stored hash and issues a token
// carrying the user's roles. It returns ErrUserNotFound or ErrBadCredentials on failure.
func (s *CredentialService) Authenticate(ctx context.Context, username, rawPassword string) (*domain.AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(s.dummyHash(), rawPassword)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, rawPassword) {
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "User authenticated", "username", user.Username)
	return &domain.AuthResult{
		Token:     token,
		Principal: domain.Principal{Subject: user.Username, Roles: user.Roles},
		UserID:    user.ID,
		Email:     user.Email,
	}, nil
}

// Register creates a self-service account with the default role.
func (s *CredentialService) Register(ctx context.Context, username, email, rawPassword string) (string, error) {
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return "", err
	}
	if err := ValidatePassword(rawPassword); err != nil {
		return "", err
	}

	if _, err := s.save(ctx, username, email, rawPassword, []domain.Role{domain.DefaultRole}); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "User registered", "username", username)
	return RegistrationSuccessMessage, nil
}

// CreateUser is the administrative variant of Register. It skips the password policy
// and grants ROLE_ADMIN in addition to the default role when admin is set.
func (s *CredentialService) CreateUser(ctx context.Context, username, email, rawPassword string, admin bool) (*domain.User, error) {
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	roles := []domain.Role{domain.DefaultRole}
	if admin {
		roles = append(roles, domain.RoleAdmin)
	}

	user, err := s.save(ctx, username, email, rawPassword, roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "User created", "username", username, "admin", admin)
	return user, nil
}

func (s *CredentialService) dummyHash() string {
	s.timingOnce.Do(func() {
		hash, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.logger.Warn(context.Background(), "Failed to prepare timing hash", "error", err.Error())
			return
		}
		s.timingHash = hash
	})
	return s.timingHash
}

// ListUsers returns every stored user with their roles.
func (s *CredentialService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *CredentialService) checkAvailable(ctx context.Context, username, email string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

// save hashes the password only once all checks passed, resolves roles and persists.
func (s *CredentialService) save(ctx context.Context, username, email, rawPassword string, roles []domain.Role) (*domain.User, error) {
	for _, r := range roles {
		if _, err := s.roles.FindRoleByName(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to resolve role %s: %w", r, err)
		}
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Save(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
	})
	if err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			// Lost a race with a concurrent registration after checkAvailable passed.
			if dup.Field == "email" {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}
