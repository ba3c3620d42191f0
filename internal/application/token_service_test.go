package application_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newClockedTokenService(key []byte) (*application.TokenService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return application.NewTokenServiceWithClock(key, application.DefaultTokenLifetime, clock.Now), clock
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, _ := newClockedTokenService(testKey)

	cases := []struct {
		name  string
		roles []domain.Role
	}{
		{"no roles", []domain.Role{}},
		{"user", []domain.Role{domain.RoleUser}},
		{"user and admin", []domain.Role{domain.RoleUser, domain.RoleAdmin}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := svc.Issue("alice", tc.roles)
			require.NoError(t, err)

			p, err := svc.Verify(tok.Value)
			require.NoError(t, err)
			assert.Equal(t, "alice", p.Subject)
			assert.Equal(t, tc.roles, p.Roles)
		})
	}
}

func TestTokenService_Lifetime(t *testing.T) {
	svc, clock := newClockedTokenService(testKey)

	tok, err := svc.Issue("alice", []domain.Role{domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, clock.now, tok.IssuedAt)
	assert.Equal(t, 10*time.Hour, tok.ExpiresAt.Sub(tok.IssuedAt))

	clock.now = clock.now.Add(10*time.Hour - time.Second)
	_, err = svc.Verify(tok.Value)
	assert.NoError(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	svc, clock := newClockedTokenService(testKey)

	tok, err := svc.Issue("alice", []domain.Role{domain.RoleUser})
	require.NoError(t, err)

	for _, after := range []time.Duration{10 * time.Hour, 11 * time.Hour, 30 * 24 * time.Hour} {
		clock.now = tok.IssuedAt.Add(after)
		_, err = svc.Verify(tok.Value)
		assert.ErrorIs(t, err, application.ErrTokenExpired, "after %s", after)
		assert.NotErrorIs(t, err, application.ErrTokenInvalidSignature)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer, _ := newClockedTokenService([]byte("ffffffffffffffffffffffffffffffff"))
	verifier, _ := newClockedTokenService(testKey)

	tok, err := issuer.Issue("alice", []domain.Role{domain.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.Verify(tok.Value)
	assert.ErrorIs(t, err, application.ErrTokenInvalidSignature)
}

func TestTokenService_Malformed(t *testing.T) {
	svc, _ := newClockedTokenService(testKey)

	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.not-base64!.sig"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, application.ErrTokenMalformed, "token %q", raw)
	}
}

func TestTokenService_MissingSubject(t *testing.T) {
	svc, clock := newClockedTokenService(testKey)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, application.TokenClaims{
		Roles: []string{"ROLE_USER"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(clock.now),
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString(testKey)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, application.ErrTokenMalformed)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc, clock := newClockedTokenService(testKey)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, application.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			IssuedAt:  jwt.NewNumericDate(clock.now),
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString(testKey)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, application.ErrTokenInvalidSignature)
}

func TestTokenService_StandardVerifierCompatible(t *testing.T) {
	svc := application.NewTokenService(testKey, 0)

	tok, err := svc.Issue("bob", []domain.Role{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok.Value, func(*jwt.Token) (any, error) { return testKey, nil })
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)

	assert.Equal(t, "HS256", parsed.Header["alg"])
	assert.Equal(t, "bob", claims["sub"])
	assert.Equal(t, []any{"ROLE_USER", "ROLE_ADMIN"}, claims["roles"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestTokenService_IssueRequiresSubject(t *testing.T) {
	svc := application.NewTokenService(testKey, time.Hour)
	_, err := svc.Issue("", nil)
	assert.ErrorIs(t, err, application.ErrTokenMalformed)
}
