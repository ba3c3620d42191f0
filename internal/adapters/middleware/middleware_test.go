package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/game-catalog-service/benchmarks/mocks"
	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
	"gitlab.com/timkado/api/game-catalog-service/pkg/contextkeys"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// recorder captures what reached the protected handler.
type recorder struct {
	calls     int
	principal *domain.Principal
}

func (rec *recorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls++
		rec.principal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func issue(t *testing.T, svc *application.TokenService, roles ...domain.Role) string {
	t.Helper()
	tok, err := svc.Issue("alice", roles)
	require.NoError(t, err)
	return tok.Value
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/games/1", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBearerAuthMiddleware_AnonymousForwarded(t *testing.T) {
	svc := application.NewTokenService(testKey, time.Hour)
	rec := &recorder{}
	h := BearerAuthMiddleware(svc, mocks.NewMockLogger())(rec.handler())

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "bearer lowercase"} {
		rr := serve(h, header)
		assert.Equal(t, http.StatusOK, rr.Code, "header %q", header)
	}
	assert.Equal(t, 3, rec.calls)
	assert.Nil(t, rec.principal)
}

func TestBearerAuthMiddleware_ValidToken(t *testing.T) {
	svc := application.NewTokenService(testKey, time.Hour)
	rec := &recorder{}
	h := BearerAuthMiddleware(svc, mocks.NewMockLogger())(rec.handler())

	rr := serve(h, "Bearer "+issue(t, svc, domain.RoleUser))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, rec.principal)
	assert.Equal(t, "alice", rec.principal.Subject)
	assert.Equal(t, []domain.Role{domain.RoleUser}, rec.principal.Roles)
}

func TestBearerAuthMiddleware_RejectsBadTokens(t *testing.T) {
	svc := application.NewTokenService(testKey, time.Hour)
	other := application.NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	past := time.Now().Add(-24 * time.Hour)
	expired := application.NewTokenServiceWithClock(testKey, time.Hour, func() time.Time { return past })

	cases := map[string]string{
		"garbage":   "Bearer not-a-token",
		"empty":     "Bearer ",
		"wrong key": "Bearer " + issue(t, other, domain.RoleAdmin),
		"expired":   "Bearer " + issue(t, expired, domain.RoleUser),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			h := BearerAuthMiddleware(svc, mocks.NewMockLogger())(rec.handler())

			rr := serve(h, header)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Zero(t, rec.calls)

			var body domain.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, domain.ErrUnauthorized, body.Code)
			assert.Equal(t, "Invalid or expired token", body.Message)
		})
	}
}

func TestBearerAuthMiddleware_RunsOnce(t *testing.T) {
	svc := application.NewTokenService(testKey, time.Hour)
	logger := mocks.NewMockLogger()
	rec := &recorder{}
	gate := BearerAuthMiddleware(svc, logger)
	h := Chain(rec.handler(), gate, gate)

	rr := serve(h, "Bearer "+issue(t, svc, domain.RoleUser))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, logger.GetLogEntriesByLevel("DEBUG"), 1)
}

func TestRoleGates(t *testing.T) {
	svc := application.NewTokenService(testKey, time.Hour)
	logger := mocks.NewMockLogger()
	gate := BearerAuthMiddleware(svc, logger)

	user := "Bearer " + issue(t, svc, domain.RoleUser)
	admin := "Bearer " + issue(t, svc, domain.RoleUser, domain.RoleAdmin)

	cases := []struct {
		name   string
		check  func(http.Handler) http.Handler
		header string
		want   int
	}{
		{"all-of anonymous", RequireRoles(logger, domain.RoleAdmin), "", http.StatusUnauthorized},
		{"all-of missing role", RequireRoles(logger, domain.RoleAdmin), user, http.StatusForbidden},
		{"all-of granted", RequireRoles(logger, domain.RoleAdmin), admin, http.StatusOK},
		{"all-of needs both", RequireRoles(logger, domain.RoleUser, domain.RoleAdmin), user, http.StatusForbidden},
		{"any-of user", RequireAnyRole(logger, domain.RoleUser, domain.RoleAdmin), user, http.StatusOK},
		{"any-of anonymous", RequireAnyRole(logger, domain.RoleUser), "", http.StatusUnauthorized},
		{"authenticated", RequireAuthenticated(logger), user, http.StatusOK},
		{"authenticated anonymous", RequireAuthenticated(logger), "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			rr := serve(Chain(rec.handler(), gate, tc.check), tc.header)
			assert.Equal(t, tc.want, rr.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, 1, rec.calls)
			} else {
				assert.Zero(t, rec.calls)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(contextkeys.RequestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(XRequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rr.Header().Get(XRequestIDHeader))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-123", seen)
}
