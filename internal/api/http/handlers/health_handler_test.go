package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func healthApp(postgres, redis DependencyPinger) *fiber.App {
	app := fiber.New()
	h := NewHealthHandler(postgres, redis)
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)
	return app
}

func TestReady_AllDependenciesUp(t *testing.T) {
	t.Parallel()

	app := healthApp(fakePinger{}, fakePinger{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ready", body.Status)
	require.Equal(t, "ok", body.Dependencies["postgres"])
	require.Equal(t, "ok", body.Dependencies["redis"])
}

func TestReady_PostgresDownReports503(t *testing.T) {
	t.Parallel()

	app := healthApp(fakePinger{err: errors.New("connection refused")}, fakePinger{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "DEPENDENCY_UNAVAILABLE", body.Error.Code)
	require.Equal(t, "unavailable", body.Error.Details["postgres"])
	require.Equal(t, "ok", body.Error.Details["redis"])
}

func TestReady_RedisDownReports503(t *testing.T) {
	t.Parallel()

	app := healthApp(fakePinger{}, fakePinger{err: errors.New("connection refused")})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLive_AlwaysOK(t *testing.T) {
	t.Parallel()

	app := healthApp(fakePinger{err: errors.New("down")}, fakePinger{err: errors.New("down")})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
