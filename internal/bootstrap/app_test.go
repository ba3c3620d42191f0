package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/game-catalog-service/benchmarks/mocks"
)

type readyBody struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func newTestApp(t *testing.T) (*App, *miniredis.Miniredis, sqlmock.Sqlmock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mux := http.NewServeMux()
	app, _, err := NewApp(mocks.NewMockConfigProvider(), mocks.NewMockLogger(), mux, &http.Server{Handler: mux}, nil, client, db)
	require.NoError(t, err)
	app.registerRoutes(context.Background())
	return app, mr, mock
}

func getReady(t *testing.T, app *App) (int, readyBody) {
	t.Helper()
	rr := httptest.NewRecorder()
	app.httpServeMux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var body readyBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return rr.Code, body
}

func TestHealth(t *testing.T) {
	app, _, _ := newTestApp(t)

	rr := httptest.NewRecorder()
	app.httpServeMux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestReady_AllUp(t *testing.T) {
	app, _, mock := newTestApp(t)
	mock.ExpectPing()

	code, body := getReady(t, app)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "READY", body.Status)
	assert.Equal(t, "connected", body.Dependencies["postgres"])
	assert.Equal(t, "connected", body.Dependencies["redis"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReady_RedisDownIsDegradedOnly(t *testing.T) {
	app, mr, mock := newTestApp(t)
	mock.ExpectPing()
	mr.Close()

	code, body := getReady(t, app)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body.Dependencies["redis"])
}

func TestReady_PostgresDown(t *testing.T) {
	app, _, mock := newTestApp(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	code, body := getReady(t, app)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "NOT_READY", body.Status)
	assert.Equal(t, "disconnected", body.Dependencies["postgres"])
}

func TestTokenServiceProvider(t *testing.T) {
	cfgProvider := mocks.NewMockConfigProvider()
	svc, err := TokenServiceProvider(cfgProvider)
	require.NoError(t, err)
	require.NotNil(t, svc)

	cfg := *cfgProvider.Get()
	cfg.Auth.SigningKey = "c2hvcnQ="
	cfgProvider.UpdateConfig(&cfg)
	_, err = TokenServiceProvider(cfgProvider)
	assert.Error(t, err)
}
