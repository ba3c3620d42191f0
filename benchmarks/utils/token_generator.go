package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// TokenGenerator signs bearer tokens with arbitrary keys and validity windows,
// including ones the service would reject.
type TokenGenerator struct {
	key []byte
}

// NewTokenGenerator creates a token generator for the given raw signing key
func NewTokenGenerator(key []byte) *TokenGenerator {
	return &TokenGenerator{key: key}
}

// GenerateToken creates a token for subject valid for expiresIn from now
func (tg *TokenGenerator) GenerateToken(subject string, roles []domain.Role, expiresIn time.Duration) (string, error) {
	now := time.Now()
	return tg.sign(subject, roles, now, now.Add(expiresIn))
}

// GenerateExpiredToken creates a token that expired one hour ago
func (tg *TokenGenerator) GenerateExpiredToken(subject string, roles []domain.Role) (string, error) {
	now := time.Now()
	return tg.sign(subject, roles, now.Add(-2*time.Hour), now.Add(-time.Hour))
}

func (tg *TokenGenerator) sign(subject string, roles []domain.Role, issuedAt, expiresAt time.Time) (string, error) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, application.TokenClaims{
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(tg.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TestTokenSet provides tokens for the accept and reject paths of the auth gate
type TestTokenSet struct {
	ValidUserTokens  []string
	ValidAdminTokens []string
	ExpiredTokens    []string
	ForeignKeyTokens []string
}

// GenerateTestTokenSet creates count tokens of each kind. Foreign-key tokens are signed with foreignKey.
func GenerateTestTokenSet(key, foreignKey []byte, count int) (*TestTokenSet, error) {
	own := NewTokenGenerator(key)
	foreign := NewTokenGenerator(foreignKey)
	set := &TestTokenSet{}

	for i := 0; i < count; i++ {
		user := fmt.Sprintf("user_%d", i)

		tok, err := own.GenerateToken(user, []domain.Role{domain.RoleUser}, time.Hour)
		if err != nil {
			return nil, err
		}
		set.ValidUserTokens = append(set.ValidUserTokens, tok)

		tok, err = own.GenerateToken(fmt.Sprintf("admin_%d", i), []domain.Role{domain.RoleUser, domain.RoleAdmin}, time.Hour)
		if err != nil {
			return nil, err
		}
		set.ValidAdminTokens = append(set.ValidAdminTokens, tok)

		tok, err = own.GenerateExpiredToken(user, []domain.Role{domain.RoleUser})
		if err != nil {
			return nil, err
		}
		set.ExpiredTokens = append(set.ExpiredTokens, tok)

		tok, err = foreign.GenerateToken(user, []domain.Role{domain.RoleAdmin}, time.Hour)
		if err != nil {
			return nil, err
		}
		set.ForeignKeyTokens = append(set.ForeignKeyTokens, tok)
	}
	return set, nil
}
