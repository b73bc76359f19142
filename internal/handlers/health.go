package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/services"
)

const healthTimeout = 5 * time.Second

// Health reports configuration, database, schema and identity provider status
// @Summary Health check
// @Description Returns component status; 503 when any component is unusable
// @Tags health
// @Produce json
// @Success 200 {object} services.Diagnostics
// @Failure 503 {object} services.Diagnostics
// @Router /healthz [get]
func Health(cfg *config.Config, gw *gateway.Gateway, authz services.Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		d := services.Diagnose(ctx, cfg, gw, authz)
		status := fiber.StatusOK
		if !d.Healthy() {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(d)
	}
}
