package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// DependencyPinger checks one backing dependency.
type DependencyPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	postgres DependencyPinger
	redis    DependencyPinger
}

// NewHealthHandler constructs handler.
func NewHealthHandler(postgres, redis DependencyPinger) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
//
// Ready only when both the document store and redis answer a ping; a 503
// with the failing dependencies otherwise.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	deps := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(c.UserContext()); err != nil {
		deps["postgres"] = "unavailable"
		ready = false
	} else {
		deps["postgres"] = "ok"
	}

	if err := h.redis.Ping(c.UserContext()); err != nil {
		deps["redis"] = "unavailable"
		ready = false
	} else {
		deps["redis"] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"details": deps,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": deps})
}
