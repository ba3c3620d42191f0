package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
)

// DefaultTokenLifetime is the absolute validity of an issued token.
const DefaultTokenLifetime = 10 * time.Hour

// TokenClaims is the JWT payload: registered claims plus the ordered role list.
type TokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens with a single process-wide key.
// The key is copied at construction and never changes afterwards.
type TokenService struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewTokenService creates a TokenService. key must already be validated (>= 256 bits).
func NewTokenService(key []byte, lifetime time.Duration) *TokenService {
	return NewTokenServiceWithClock(key, lifetime, time.Now)
}

// NewTokenServiceWithClock is NewTokenService with an injectable wall clock.
func NewTokenServiceWithClock(key []byte, lifetime time.Duration, now func() time.Time) *TokenService {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	k := make([]byte, len(key))
	copy(k, key)

	s := &TokenService{key: k, lifetime: lifetime, now: now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

// Issue signs a token for subject with the given roles, valid for the configured lifetime.
func (s *TokenService) Issue(subject string, roles []domain.Role) (domain.IssuedToken, error) {
	if subject == "" {
		return domain.IssuedToken{}, fmt.Errorf("%w: empty subject", ErrTokenMalformed)
	}

	// NumericDate has second precision, so the window is computed on truncated times.
	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.lifetime)

	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, string(r))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		Roles: roleNames,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return domain.IssuedToken{Value: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry of tokenString and returns its principal.
// Errors are one of ErrTokenMalformed, ErrTokenInvalidSignature or ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*domain.Principal, error) {
	claims := &TokenClaims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil || !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: missing subject or invalid validity window", ErrTokenMalformed)
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, domain.Role(r))
	}
	return &domain.Principal{Subject: claims.Subject, Roles: roles}, nil
}

// classifyTokenError maps jwt errors onto the token error taxonomy. The signature is
// verified before claims, so an expired token only reports expiry once its signature is good.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
