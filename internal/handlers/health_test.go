package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/handlers"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/localnerve/portfolio-site/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger func(context.Context) error

func (p pinger) Ping(ctx context.Context) error { return p(ctx) }

func healthOf(t *testing.T, cfg *config.Config, gw *gateway.Gateway, authz services.Pinger) (int, services.Diagnostics) {
	t.Helper()
	app := fiber.New()
	app.Get("/healthz", handlers.Health(cfg, gw, authz))

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	var d services.Diagnostics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	return resp.StatusCode, d
}

func TestHealthHandler(t *testing.T) {
	cfg := &config.Config{
		DBType:        "sqlite-pure",
		DBDatabase:    "site.db",
		AuthzURL:      "http://authorizer.local:8080",
		AuthzClientID: "client",
	}
	gw := gateway.New(testutil.OpenTestDB(t))

	status, d := healthOf(t, cfg, gw, pinger(func(context.Context) error { return nil }))
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, d.Healthy())

	status, d = healthOf(t, cfg, gw, pinger(func(context.Context) error { return errors.New("connection refused") }))
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, services.StatusUnreachable, d.Authorizer)
}

func TestHealthHandlerUnconfigured(t *testing.T) {
	cfg := &config.Config{DBType: "postgres"}
	status, d := healthOf(t, cfg, gateway.Unconfigured(cfg.MissingKeys()), nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, d.Missing, "AUTHZ_URL")
}
